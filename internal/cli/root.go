package cli

import (
	"context"
	"fmt"
	"io"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/internal/tui"
	"github.com/spf13/cobra"
)

// AppLoader returns the wired App. It is called lazily by commands that
// need the backend.
type AppLoader func(ctx context.Context) (*App, error)

// NewRootCommand builds the learnpath command tree.
func NewRootCommand(load AppLoader) *cobra.Command {
	root := &cobra.Command{
		Use:   "learnpath",
		Short: "Browse, author and track learning paths from the terminal",
		Long: `learnpath is a terminal client for the learning path platform.
It keeps your session between runs, walks you through authoring a
learning path, tracks your progress and lets you join the discussion
on community posts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCommand(load),
		newLogoutCommand(load),
		newWhoamiCommand(load),
		newStatusCommand(load),
		newPathsCommand(load),
		newProgressCommand(load),
		newCommentCommand(load),
		newPostCommand(load),
		newNavCommand(load),
	)
	return root
}

// Execute runs the command tree and prints a failure the way the client
// would show it.
func Execute(ctx context.Context, root *cobra.Command, errOut io.Writer) error {
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(errOut, tui.RenderError(apperrors.UserMessage(err, err.Error())))
	}
	return err
}

func outf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func outln(cmd *cobra.Command, a ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), a...)
}
