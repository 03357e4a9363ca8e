package config

import (
	"os"
	"path/filepath"
)

type SessionConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
	GetStorageKey() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Session struct {
	Backend        string `env:"STORAGE" envDefault:"file"`
	Path           string `env:"STORAGE_PATH"`
	Key            string `env:"STORAGE_KEY"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"learnpath:storage"`
}

var _ SessionConfig = Session{}

func (s Session) GetStorageBackend() string {
	switch s.Backend {
	case StorageMemory, StorageRedis:
		return s.Backend
	default:
		return StorageFile
	}
}

// GetStoragePath defaults to <user config dir>/learnpath/session.json.
func (s Session) GetStoragePath() string {
	if s.Path != "" {
		return s.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "learnpath", "session.json")
}

// GetStorageKey is a hex-encoded 32 byte key; empty disables sealing.
func (s Session) GetStorageKey() string {
	return s.Key
}

func (s Session) GetRedisURL() string {
	return s.RedisURL
}

func (s Session) GetRedisKeyPrefix() string {
	return s.RedisKeyPrefix
}
