package cli

import (
	"errors"

	"github.com/jrsteele09/learnpath-client/auth/google"
	"github.com/jrsteele09/learnpath-client/internal/tui"
	"github.com/jrsteele09/learnpath-client/sessions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLoginCommand(load AppLoader) *cobra.Command {
	var email, password, credential string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password or a Google credential",
		Example: `  learnpath login --email jane@example.com
  learnpath login --google-credential "$ID_TOKEN"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}

			var payload sessions.LoginPayload
			if credential != "" {
				payload, err = app.Store.LoginWithGoogle(cmd.Context(), google.Response{Credential: credential, SelectBy: "cli"})
			} else {
				if (email == "" || password == "") && tui.ShouldPrompt() {
					if err := tui.PromptLogin(&email, &password); err != nil {
						return err
					}
				}
				payload, err = app.Store.LoginWithPassword(cmd.Context(), email, password)
			}
			if err != nil {
				return err
			}
			outf(cmd, "Logged in as %s\n", payload.User.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&credential, "google-credential", "", "Google ID token from Google Identity Services")
	return cmd
}

func newLogoutCommand(load AppLoader) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if revoke {
				app.Store.Restore(cmd.Context())
				if err := app.Auth.RevokeToken(cmd.Context(), app.Store.Token()); err != nil {
					log.Warn().Err(err).Msg("Failed to revoke token, logging out locally")
				}
			}
			app.Store.Logout()
			outln(cmd, "Logged out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "also ask the backend to revoke the token")
	return cmd
}

func newWhoamiCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			user, err := app.RequireUser(cmd.Context())
			if err != nil {
				return err
			}
			outf(cmd, "%s <%s> id=%s\n", user.DisplayName(), user.Email, user.ID)
			return nil
		},
	}
}

// newStatusCommand reports the restore phase without failing when logged out.
func newStatusCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Restore the stored session and report its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			phase := app.Store.Restore(cmd.Context())
			outf(cmd, "session: %s\n", phase)
			if user, ok := app.Store.CurrentUser(); ok {
				outf(cmd, "user: %s\n", user.DisplayName())
			}
			outf(cmd, "api: %s\n", app.Config.GetAPIBaseURL())
			if phase == sessions.PhaseRejected {
				return errors.New("stored session was rejected, please log in again")
			}
			return nil
		},
	}
}
