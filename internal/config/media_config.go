package config

type MediaConfig interface {
	GetS3Bucket() string
	GetS3Region() string
	GetS3Endpoint() string
	GetS3AccessKeyID() string
	GetS3SecretAccessKey() string
	GetS3PublicURL() string
	GetThumbnailSize() int
	S3Enabled() bool
}

type ContentConfig interface {
	GetSpamPatterns() []string
}

type Media struct {
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"auto"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicURL       string `env:"S3_PUBLIC_URL"`
	ThumbnailSize     int    `env:"THUMBNAIL_SIZE" envDefault:"480"`
}

var _ MediaConfig = Media{}

func (m Media) GetS3Bucket() string          { return m.S3Bucket }
func (m Media) GetS3Region() string          { return m.S3Region }
func (m Media) GetS3Endpoint() string        { return m.S3Endpoint }
func (m Media) GetS3AccessKeyID() string     { return m.S3AccessKeyID }
func (m Media) GetS3SecretAccessKey() string { return m.S3SecretAccessKey }
func (m Media) GetS3PublicURL() string       { return m.S3PublicURL }

func (m Media) GetThumbnailSize() int {
	if m.ThumbnailSize <= 0 {
		return 480
	}
	return m.ThumbnailSize
}

// S3Enabled reports whether uploads should go to object storage instead of inline data URLs.
func (m Media) S3Enabled() bool {
	return m.S3Bucket != "" && m.S3PublicURL != ""
}

type Content struct {
	SpamPatterns []string `env:"SPAM_PATTERNS" envSeparator:";"`
}

var _ ContentConfig = Content{}

func (c Content) GetSpamPatterns() []string {
	return c.SpamPatterns
}
