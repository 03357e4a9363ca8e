package cli

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/learnpath-client/internal/tui"
	"github.com/jrsteele09/learnpath-client/posts"
	"github.com/jrsteele09/learnpath-client/posts/media"
	"github.com/spf13/cobra"
)

func newPostCommand(load AppLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Browse and publish community posts",
	}
	cmd.AddCommand(newPostListCommand(load), newPostShowCommand(load), newPostCreateCommand(load))
	return cmd
}

func newPostListCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List community posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			list, err := app.Posts.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				outln(cmd, "No posts yet")
			}
			for _, p := range list {
				outf(cmd, "%s  %s  (%d media)\n", p.ID, p.Title, len(p.MediaURLs))
			}
			return nil
		},
	}
}

func newPostShowCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			p, err := app.Posts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			outln(cmd, tui.RenderPost(p))
			return nil
		},
	}
}

// readSource loads a media file. The content type comes from the extension
// and falls back to sniffing the bytes.
func readSource(name string, duration time.Duration) (media.Source, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return media.Source{}, fmt.Errorf("[post create] %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return media.Source{Name: filepath.Base(name), ContentType: contentType, Data: data, Duration: duration}, nil
}

func readSources(names []string, duration time.Duration) ([]media.Source, error) {
	sources := make([]media.Source, 0, len(names))
	for _, name := range names {
		src, err := readSource(name, duration)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func newPostCreateCommand(load AppLoader) *cobra.Command {
	var title, content, tags string
	var images, videos []string
	var videoDuration time.Duration

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a post with optional images and videos",
		Example: `  learnpath post create --title "Week one" --content "$(cat notes.md)" --tags go,testing
  learnpath post create --title "Demo" --content "..." --video demo.mp4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			composer, err := posts.NewComposer(app.Posts, app.Store, app.Previewer)
			if err != nil {
				return err
			}
			defer composer.Close()

			composer.SetTitle(title)
			composer.SetContent(content)
			composer.SetTags(tags)

			attachments := []struct {
				kind  media.Kind
				names []string
			}{{media.KindImage, images}, {media.KindVideo, videos}}
			for _, a := range attachments {
				if len(a.names) == 0 {
					continue
				}
				sources, err := readSources(a.names, videoDuration)
				if err != nil {
					return err
				}
				if err := composer.Attach(a.kind, sources...); err != nil {
					return err
				}
			}
			if err := composer.Wait(cmd.Context()); err != nil {
				return err
			}
			if mediaErrors := composer.MediaErrors(); len(mediaErrors) > 0 {
				keys := make([]string, 0, len(mediaErrors))
				for k := range mediaErrors {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				messages := make([]string, len(keys))
				for i, k := range keys {
					messages[i] = mediaErrors[k]
				}
				return errors.New(strings.Join(messages, "; "))
			}

			id, err := composer.Submit(cmd.Context())
			if err != nil {
				if msg := composer.Message(); msg != "" {
					return errors.New(msg)
				}
				return err
			}
			outf(cmd, "Published post %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&content, "content", "", fmt.Sprintf("post body, at least %d words", posts.MinWords))
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringSliceVar(&images, "image", nil, "image file to attach (repeatable)")
	cmd.Flags().StringSliceVar(&videos, "video", nil, "video file to attach (repeatable)")
	cmd.Flags().DurationVar(&videoDuration, "video-duration", 0, "declared video length, probed from the file when omitted")
	return cmd
}
