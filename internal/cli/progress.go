package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/internal/tui"
	"github.com/jrsteele09/learnpath-client/services/progress"
	"github.com/spf13/cobra"
)

// progressRun is the body of a subcommand acting on one progress record.
type progressRun func(ctx context.Context, app *App, progressID string, args []string) (progress.Progress, error)

// progressCommand builds a subcommand whose first argument is a progress id
// and which prints the updated record.
func progressCommand(load AppLoader, use, short string, nargs int, run progressRun) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			updated, err := run(cmd.Context(), app, args[0], args[1:])
			if err != nil {
				return err
			}
			outln(cmd, tui.RenderProgress(updated))
			return nil
		},
	}
}

func newProgressCommand(load AppLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "progress",
		Aliases: []string{"pr"},
		Short:   "Track your progress through learning paths",
	}

	cmd.AddCommand(
		newProgressListCommand(load, "list", "List your progress", func(ctx context.Context, app *App, userID string) ([]progress.Progress, error) {
			return app.Progress.GetUserProgress(ctx, userID)
		}),
		newProgressListCommand(load, "recent", "Show your most recently active paths", func(ctx context.Context, app *App, userID string) ([]progress.Progress, error) {
			return app.Progress.GetRecentProgress(ctx, userID)
		}),
		newProgressShowCommand(load),
		newProgressStartCommand(load),
		progressCommand(load, "complete <progress-id> <milestone>", "Mark a milestone done (by id or position)", 2,
			func(ctx context.Context, app *App, id string, args []string) (progress.Progress, error) {
				milestoneID, err := resolveMilestone(ctx, app, id, args[0])
				if err != nil {
					return progress.Progress{}, err
				}
				return app.Progress.CompleteMilestone(ctx, id, milestoneID)
			}),
		progressCommand(load, "uncomplete <progress-id> <milestone>", "Mark a milestone not done (by id or position)", 2,
			func(ctx context.Context, app *App, id string, args []string) (progress.Progress, error) {
				milestoneID, err := resolveMilestone(ctx, app, id, args[0])
				if err != nil {
					return progress.Progress{}, err
				}
				return app.Progress.UncompleteMilestone(ctx, id, milestoneID)
			}),
		progressCommand(load, "percent <progress-id> <value>", "Set the completion percentage by hand", 2,
			func(ctx context.Context, app *App, id string, args []string) (progress.Progress, error) {
				value, err := progress.ParsePercentage(args[0])
				if err != nil {
					return progress.Progress{}, err
				}
				return app.Progress.UpdateManualPercentage(ctx, id, value)
			}),
		progressCommand(load, "recompute <progress-id>", "Recompute the percentage from completed milestones", 1,
			func(ctx context.Context, app *App, id string, _ []string) (progress.Progress, error) {
				if err := app.Progress.UpdateProgressPercentage(ctx, id); err != nil {
					return progress.Progress{}, err
				}
				detail, err := app.Progress.GetProgressDetail(ctx, id)
				return detail.Progress, err
			}),
		progressCommand(load, "done <progress-id>", "Mark the whole path complete", 1,
			func(ctx context.Context, app *App, id string, _ []string) (progress.Progress, error) {
				return app.Progress.MarkAsComplete(ctx, id, true)
			}),
		progressCommand(load, "undone <progress-id>", "Mark the path as still in progress", 1,
			func(ctx context.Context, app *App, id string, _ []string) (progress.Progress, error) {
				return app.Progress.MarkAsComplete(ctx, id, false)
			}),
		progressCommand(load, "notes <progress-id> <text>", "Replace your notes", 2,
			func(ctx context.Context, app *App, id string, args []string) (progress.Progress, error) {
				return app.Progress.UpdateNotes(ctx, id, args[0])
			}),
		progressCommand(load, "like <progress-id>", "Like someone's progress", 1,
			func(ctx context.Context, app *App, id string, _ []string) (progress.Progress, error) {
				if err := app.Progress.LikeProgress(ctx, id); err != nil {
					return progress.Progress{}, err
				}
				detail, err := app.Progress.GetProgressDetail(ctx, id)
				return detail.Progress, err
			}),
		progressCommand(load, "badge <progress-id> <badge>", "Award a badge", 2,
			func(ctx context.Context, app *App, id string, args []string) (progress.Progress, error) {
				if err := app.Progress.AwardBadge(ctx, id, args[0]); err != nil {
					return progress.Progress{}, err
				}
				detail, err := app.Progress.GetProgressDetail(ctx, id)
				return detail.Progress, err
			}),
		newProgressDeleteCommand(load),
	)
	return cmd
}

func newProgressListCommand(load AppLoader, use, short string, list func(context.Context, *App, string) ([]progress.Progress, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			user, err := app.RequireUser(cmd.Context())
			if err != nil {
				return err
			}
			records, err := list(cmd.Context(), app, user.ID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				outln(cmd, "No progress yet, start a path with `learnpath progress start <path-id>`")
			}
			for _, p := range records {
				outln(cmd, tui.RenderProgress(p))
			}
			return nil
		},
	}
}

func newProgressShowCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show <progress-id>",
		Short: "Show a progress record with its milestones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			detail, err := app.Progress.GetProgressDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			outln(cmd, tui.RenderProgress(detail.Progress))
			if detail.Enrichment != nil {
				outln(cmd, tui.RenderError("Learning path details are unavailable"))
				return nil
			}

			done := make(map[string]bool, len(detail.CompletedMilestones))
			for _, m := range detail.CompletedMilestones {
				done[m.MilestoneID] = true
			}
			for i, m := range detail.LearningPath.Milestones {
				mark := " "
				if done[m.ID] {
					mark = "x"
				}
				outf(cmd, "[%s] %d. %s  %s\n", mark, i+1, m.Title, m.ID)
			}
			if detail.Notes != "" {
				outf(cmd, "notes: %s\n", detail.Notes)
			}
			return nil
		},
	}
}

func newProgressStartCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "start <path-id>",
		Short: "Start tracking a learning path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			user, err := app.RequireUser(cmd.Context())
			if err != nil {
				return err
			}
			created, err := app.Progress.StartProgress(cmd.Context(), args[0], user.ID)
			if err != nil {
				return err
			}
			outln(cmd, tui.RenderProgress(created))
			return nil
		},
	}
}

func newProgressDeleteCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <progress-id>",
		Short: "Stop tracking a learning path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			if err := app.Progress.DeleteProgress(cmd.Context(), args[0]); err != nil {
				return err
			}
			outf(cmd, "Deleted progress %s\n", args[0])
			return nil
		},
	}
}

// resolveMilestone accepts either a milestone id or its 1-based position in
// the learning path.
func resolveMilestone(ctx context.Context, app *App, progressID, ref string) (string, error) {
	position, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return ref, nil
	}
	detail, err := app.Progress.GetProgressDetail(ctx, progressID)
	if err != nil {
		return "", err
	}
	milestones := detail.LearningPath.Milestones
	if position < 1 || position > len(milestones) {
		return "", apperrors.NewValidationError("milestoneId", fmt.Sprintf("Milestone position must be between 1 and %d", len(milestones)))
	}
	return milestones[position-1].ID, nil
}
