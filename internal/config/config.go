package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const envPrefix = "LEARNPATH_"

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	MediaConfig
	ContentConfig
	DevAPIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Media
	Content
	DevAPI
}

// New loads an optional .env file and parses LEARNPATH_* variables.
func New(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded, relying on environment variables")
	}

	c := mainConfig{}
	if err := env.ParseWithOptions(&c, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("[config New] failed to parse environment: %w", err)
	}
	return c, nil
}

// Defaults returns a Config built only from default values, ignoring the environment.
func Defaults() Config {
	c := mainConfig{}
	_ = env.ParseWithOptions(&c, env.Options{
		Prefix:      envPrefix,
		Environment: map[string]string{},
	})
	return c
}
