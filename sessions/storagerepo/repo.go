package storagerepo

import (
	"context"
	"errors"
)

// Keys persisted for a session. They are written together and cleared together.
const (
	KeyToken       = "token"
	KeyCurrentUser = "currentUser"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("storage key not found")

// Repo is a durable string key/value store, the client's equivalent of
// browser local storage.
type Repo interface {
	// Get returns the value stored under key or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores every key/value pair in one write
	Set(ctx context.Context, values map[string]string) error

	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}
