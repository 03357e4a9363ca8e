package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	GetGoogleClientID() string
}

type API struct {
	BaseURL        string        `env:"API_URL" envDefault:"http://localhost:8080/api"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	GoogleClientID string        `env:"GOOGLE_CLIENT_ID"`
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return strings.TrimSuffix(a.BaseURL, "/")
}

func (a API) GetHTTPTimeout() time.Duration {
	return a.HTTPTimeout
}

// GetRateLimitRPS returns 0 when client-side throttling is disabled.
func (a API) GetRateLimitRPS() float64 {
	return a.RateLimitRPS
}

func (a API) GetRateLimitBurst() int {
	if a.RateLimitBurst < 1 {
		return 1
	}
	return a.RateLimitBurst
}

func (a API) GetGoogleClientID() string {
	return a.GoogleClientID
}
