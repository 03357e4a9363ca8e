package cli

import (
	"context"

	"github.com/jrsteele09/learnpath-client/internal/tui"
	"github.com/jrsteele09/learnpath-client/services/comment"
	"github.com/spf13/cobra"
)

func newCommentCommand(load AppLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Read and write comments on community posts",
	}

	cmd.AddCommand(
		commentListCommand(load, "list <post-id>", "List every comment on a post", func(ctx context.Context, app *App, id string) ([]comment.Comment, error) {
			return app.Comments.GetCommentsByReference(ctx, comment.ReferenceTypePost, id)
		}),
		commentListCommand(load, "top-level <post-id>", "List comments on a post that are not replies", func(ctx context.Context, app *App, id string) ([]comment.Comment, error) {
			return app.Comments.GetTopLevelComments(ctx, comment.ReferenceTypePost, id)
		}),
		commentListCommand(load, "replies <comment-id>", "List the replies to a comment", func(ctx context.Context, app *App, id string) ([]comment.Comment, error) {
			return app.Comments.GetReplies(ctx, id)
		}),
		newCommentAddCommand(load),
		newCommentReplyCommand(load),
		newCommentEditCommand(load),
		newCommentDeleteCommand(load),
		newCommentLikeCommand(load),
	)
	return cmd
}

func commentListCommand(load AppLoader, use, short string, list func(context.Context, *App, string) ([]comment.Comment, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			comments, err := list(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if len(comments) == 0 {
				outln(cmd, "No comments yet")
			}
			for _, c := range comments {
				outln(cmd, tui.RenderComment(c))
			}
			return nil
		},
	}
}

func newCommentAddCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "add <post-id> <text>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addComment(cmd, load, args[0], "", args[1])
		},
	}
}

func newCommentReplyCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <post-id> <comment-id> <text>",
		Short: "Reply to a comment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addComment(cmd, load, args[0], args[1], args[2])
		},
	}
}

func addComment(cmd *cobra.Command, load AppLoader, postID, parentID, content string) error {
	app, err := load(cmd.Context())
	if err != nil {
		return err
	}
	// Validate before touching the session so a bad comment fails fast.
	if err := app.Comments.Validate(content); err != nil {
		return err
	}
	user, err := app.RequireUser(cmd.Context())
	if err != nil {
		return err
	}
	created, err := app.Comments.AddComment(cmd.Context(), postID, comment.Comment{
		Content:         content,
		UserID:          user.ID,
		ParentCommentID: parentID,
	})
	if err != nil {
		return err
	}
	outln(cmd, tui.RenderComment(created))
	return nil
}

func newCommentEditCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <comment-id> <text>",
		Short: "Change the text of your comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			updated, err := app.Comments.UpdateComment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			outln(cmd, tui.RenderComment(updated))
			return nil
		},
	}
}

func newCommentDeleteCommand(load AppLoader) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete your comment and its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			if !yes && tui.ShouldPrompt() {
				confirmed, err := tui.PromptForConfirmation("Delete this comment and all of its replies?", false)
				if err != nil {
					return err
				}
				if !confirmed {
					outln(cmd, "Cancelled")
					return nil
				}
			}
			if err := app.Comments.DeleteComment(cmd.Context(), args[0]); err != nil {
				return err
			}
			outf(cmd, "Deleted comment %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCommentLikeCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "like <comment-id>",
		Short: "Like a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			if err := app.Comments.LikeComment(cmd.Context(), args[0]); err != nil {
				return err
			}
			outf(cmd, "Liked comment %s\n", args[0])
			return nil
		},
	}
}
