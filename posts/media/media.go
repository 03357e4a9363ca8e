package media

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
)

// Kind of an attached media item.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

const (
	MaxItems         = 3
	MaxVideoDuration = 30 * time.Second
)

const (
	MsgLimit      = "You can only upload up to 3 media items in total"
	MsgImageType  = "Only image files are supported for photos"
	MsgVideoType  = "Only video files are supported for videos"
	MsgVideoLong  = "Videos must be 30 seconds or less"
	msgEmptyMedia = "Media file is empty"
)

// Source is a file picked for upload.
type Source struct {
	Name        string
	ContentType string
	Data        []byte

	// Duration is the length declared by the caller. Zero means the video is probed.
	Duration time.Duration
}

// Item is an attached media entry of a post draft. Preview is the reference
// sent to the backend: a data URL or a public object URL.
type Item struct {
	Kind        Kind
	Name        string
	ContentType string
	Preview     string
	Description string
	Duration    time.Duration
}

// Previewer turns a source into the reference stored on the post.
type Previewer interface {
	Preview(ctx context.Context, kind Kind, src Source) (string, error)
}

// CheckType rejects a source whose content type does not match kind.
func CheckType(kind Kind, src Source) error {
	contentType := baseContentType(src.ContentType)
	switch kind {
	case KindImage:
		if !strings.HasPrefix(contentType, "image/") {
			return apperrors.Wrapf(apperrors.ErrMediaType, MsgImageType)
		}
	case KindVideo:
		if !strings.HasPrefix(contentType, "video/") {
			return apperrors.Wrapf(apperrors.ErrMediaType, MsgVideoType)
		}
	default:
		return apperrors.Wrapf(apperrors.ErrMediaType, "unknown media kind %q", kind)
	}
	return nil
}

// Process validates src and builds the attached item. Videos longer than
// MaxVideoDuration are rejected.
func Process(ctx context.Context, previewer Previewer, kind Kind, src Source) (Item, error) {
	if err := CheckType(kind, src); err != nil {
		return Item{}, err
	}
	if len(src.Data) == 0 {
		return Item{}, apperrors.NewValidationError("media", msgEmptyMedia)
	}

	item := Item{Kind: kind, Name: src.Name, ContentType: baseContentType(src.ContentType)}
	if kind == KindVideo {
		duration := src.Duration
		if duration <= 0 {
			probed, err := ProbeDuration(src.Data)
			if err != nil {
				return Item{}, err
			}
			duration = probed
		}
		if duration > MaxVideoDuration {
			return Item{}, apperrors.Wrapf(apperrors.ErrVideoTooLong, MsgVideoLong)
		}
		item.Duration = duration
	}

	preview, err := previewer.Preview(ctx, kind, src)
	if err != nil {
		return Item{}, err
	}
	item.Preview = preview
	return item, nil
}

func baseContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
