package config

import "time"

// DevAPIConfig configures the in-memory development backend.
type DevAPIConfig interface {
	GetDevAPIPort() string
	GetDevTokenSecret() string
	GetDevTokenExpiry() time.Duration
	GetDevSeedEmail() string
	GetDevSeedPassword() string
	GetAllowedOrigins() []string
}

type DevAPI struct {
	Port           string        `env:"DEVAPI_PORT" envDefault:"8080"`
	TokenSecret    string        `env:"DEVAPI_TOKEN_SECRET" envDefault:"learnpath-dev-secret"`
	TokenExpiry    time.Duration `env:"DEVAPI_TOKEN_EXPIRY" envDefault:"24h"`
	SeedEmail      string        `env:"DEVAPI_SEED_EMAIL" envDefault:"demo@learnpath.dev"`
	SeedPassword   string        `env:"DEVAPI_SEED_PASSWORD" envDefault:"demo-password"`
	AllowedOrigins []string      `env:"DEVAPI_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

var _ DevAPIConfig = DevAPI{}

func (d DevAPI) GetDevAPIPort() string {
	port := d.Port
	if port != "" && port[0] != ':' {
		port = ":" + port
	}
	return port
}

func (d DevAPI) GetDevTokenSecret() string {
	return d.TokenSecret
}

func (d DevAPI) GetDevTokenExpiry() time.Duration {
	if d.TokenExpiry <= 0 {
		return 24 * time.Hour
	}
	return d.TokenExpiry
}

// GetDevSeedEmail is the account created at startup. Empty disables seeding.
func (d DevAPI) GetDevSeedEmail() string {
	return d.SeedEmail
}

func (d DevAPI) GetDevSeedPassword() string {
	return d.SeedPassword
}

func (d DevAPI) GetAllowedOrigins() []string {
	return d.AllowedOrigins
}
