package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jrsteele09/learnpath-client/internal/config"
)

const (
	objectFolder = "posts"
	cacheControl = "public, max-age=31536000, immutable"
)

// S3Uploader stores media in an S3-compatible bucket and returns public URLs.
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
	size      int
}

// NewS3Uploader builds an uploader from the media configuration. A custom
// endpoint (R2, MinIO) switches to path-style addressing.
func NewS3Uploader(ctx context.Context, cfg config.MediaConfig) (*S3Uploader, error) {
	if !cfg.S3Enabled() {
		return nil, errors.New("[S3Uploader New] missing bucket or public url configuration")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.GetS3Region())}
	if cfg.GetS3AccessKeyID() != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.GetS3AccessKeyID(), cfg.GetS3SecretAccessKey(), ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("[S3Uploader New] failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := cfg.GetS3Endpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3UploaderWithClient(client, cfg.GetS3Bucket(), cfg.GetS3PublicURL(), cfg.GetThumbnailSize()), nil
}

func NewS3UploaderWithClient(client *s3.Client, bucket, publicURL string, thumbnailSize int) *S3Uploader {
	return &S3Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		size:      thumbnailSize,
	}
}

// Preview uploads the source under a random key. Images are thumbnailed to
// JPEG before upload.
func (u *S3Uploader) Preview(ctx context.Context, kind Kind, src Source) (string, error) {
	body := src.Data
	contentType := baseContentType(src.ContentType)
	ext := strings.ToLower(path.Ext(src.Name))

	if kind == KindImage {
		thumb, err := Thumbnail(src.Data, u.size)
		if err != nil {
			return "", err
		}
		body, contentType, ext = thumb, contentTypeJPEG, ".jpg"
	}

	key := fmt.Sprintf("%s/%s%s", objectFolder, uuid.NewString(), ext)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("[S3Uploader Preview] failed to upload %s: %w", key, err)
	}
	return u.publicURL + "/" + key, nil
}

// Delete removes a previously uploaded object by its public URL.
func (u *S3Uploader) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, u.publicURL+"/")
	if key == "" || key == url {
		return nil
	}
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("[S3Uploader Delete] %w", err)
	}
	return nil
}
