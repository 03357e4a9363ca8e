package storagerepo

import (
	"context"
	"fmt"

	"github.com/jrsteele09/learnpath-client/internal/config"
	"github.com/rs/zerolog/log"
)

// New builds the storage backend selected by configuration. The returned
// close function releases backend connections and is never nil.
func New(ctx context.Context, cfg config.SessionConfig) (Repo, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetStorageBackend() {
	case config.StorageMemory:
		return NewInMemoryRepo(), noop, nil

	case config.StorageRedis:
		client, err := DialRedis(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, noop, fmt.Errorf("[storagerepo New] %w", err)
		}
		repo, err := NewRedisRepo(client, cfg.GetRedisKeyPrefix())
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		log.Debug().Str("backend", config.StorageRedis).Msg("session storage ready")
		return repo, client.Close, nil

	default:
		repo, err := NewFileRepo(cfg.GetStoragePath(), cfg.GetStorageKey())
		if err != nil {
			return nil, noop, err
		}
		log.Debug().Str("backend", config.StorageFile).Str("path", cfg.GetStoragePath()).Msg("session storage ready")
		return repo, noop, nil
	}
}
