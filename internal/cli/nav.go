package cli

import (
	"github.com/jrsteele09/learnpath-client/internal/tui"
	"github.com/jrsteele09/learnpath-client/shell"
	"github.com/spf13/cobra"
)

func newNavCommand(load AppLoader) *cobra.Command {
	var route, search string

	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Show the navigation bar for a route",
		Example: `  learnpath nav --route /posts
  learnpath nav --search "rust basics"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			app.Store.Restore(cmd.Context())

			nav, err := shell.NewNavbar(app.Store, route)
			if err != nil {
				return err
			}
			defer nav.Close()

			outln(cmd, tui.RenderNavbar(nav))
			if search != "" {
				nav.ToggleSearch()
				nav.SetQuery(search)
				if target, ok := nav.SubmitSearch(); ok {
					outf(cmd, "search: %s\n", target)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&route, "route", "/", "route the shell is showing")
	cmd.Flags().StringVar(&search, "search", "", "submit a search from the shell")
	return cmd
}
