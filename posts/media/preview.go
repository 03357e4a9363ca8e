package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/jrsteele09/learnpath-client/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	thumbnailQuality = 85
	contentTypeJPEG  = "image/jpeg"
)

// Thumbnail decodes an image, fits it inside a size x size box and encodes it
// as JPEG. Images already inside the box are only re-encoded.
func Thumbnail(data []byte, size int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("[media Thumbnail] failed to decode image: %w", err)
	}

	var out image.Image = img
	if b := img.Bounds(); b.Dx() > size || b.Dy() > size {
		out = imaging.Fit(img, size, size, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return nil, fmt.Errorf("[media Thumbnail] failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURLPreviewer inlines media as data URLs. Images are thumbnailed first.
type DataURLPreviewer struct {
	size int
}

func NewDataURLPreviewer(thumbnailSize int) *DataURLPreviewer {
	return &DataURLPreviewer{size: thumbnailSize}
}

func (p *DataURLPreviewer) Preview(_ context.Context, kind Kind, src Source) (string, error) {
	if kind == KindImage {
		thumb, err := Thumbnail(src.Data, p.size)
		if err != nil {
			return "", err
		}
		return dataURL(contentTypeJPEG, thumb), nil
	}
	return dataURL(baseContentType(src.ContentType), src.Data), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// NewPreviewer picks the S3 uploader when object storage is configured and
// falls back to inline data URLs otherwise.
func NewPreviewer(ctx context.Context, cfg config.MediaConfig) (Previewer, error) {
	if !cfg.S3Enabled() {
		return NewDataURLPreviewer(cfg.GetThumbnailSize()), nil
	}
	uploader, err := NewS3Uploader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("bucket", cfg.GetS3Bucket()).Msg("Uploading post media to object storage")
	return uploader, nil
}
