package storagerepo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// FileRepo persists values as a JSON document on disk. When a key is
// configured the document is sealed with NaCl secretbox.
type FileRepo struct {
	mu   sync.Mutex
	path string
	key  *[32]byte
}

// NewFileRepo creates a file backed repo at path. hexKey may be empty, in
// which case the file is stored in clear text.
func NewFileRepo(path, hexKey string) (*FileRepo, error) {
	if path == "" {
		return nil, errors.New("[FileRepo New] path is required")
	}

	r := &FileRepo{path: path}
	if hexKey != "" {
		raw, err := hex.DecodeString(hexKey)
		if err != nil || len(raw) != 32 {
			return nil, errors.New("[FileRepo New] storage key must be 32 hex-encoded bytes")
		}
		r.key = new([32]byte)
		copy(r.key[:], raw)
	}
	return r, nil
}

func (r *FileRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (r *FileRepo) Set(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load()
	if err != nil {
		// An unreadable document is replaced rather than merged.
		current = make(map[string]string)
	}
	for k, v := range values {
		current[k] = v
	}
	return r.store(current)
}

func (r *FileRepo) Remove(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load()
	if err != nil {
		current = make(map[string]string)
	}
	for _, k := range keys {
		delete(current, k)
	}
	if len(current) == 0 {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("[FileRepo Remove] %w", err)
		}
		return nil
	}
	return r.store(current)
}

// load returns an empty map when the file does not exist.
func (r *FileRepo) load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileRepo load] %w", err)
	}

	if r.key != nil {
		if len(data) < nonceSize+secretbox.Overhead {
			return nil, errors.New("[FileRepo load] sealed document is truncated")
		}
		var nonce [nonceSize]byte
		copy(nonce[:], data[:nonceSize])
		opened, ok := secretbox.Open(nil, data[nonceSize:], &nonce, r.key)
		if !ok {
			return nil, errors.New("[FileRepo load] failed to open sealed document")
		}
		data = opened
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		log.Debug().Str("path", r.path).Err(err).Msg("storage document is not valid JSON")
		return nil, fmt.Errorf("[FileRepo load] %w", err)
	}
	return values, nil
}

func (r *FileRepo) store(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("[FileRepo store] %w", err)
	}

	if r.key != nil {
		var nonce [nonceSize]byte
		if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
			return fmt.Errorf("[FileRepo store] nonce: %w", err)
		}
		data = secretbox.Seal(nonce[:], data, &nonce, r.key)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("[FileRepo store] %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("[FileRepo store] %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("[FileRepo store] %w", err)
	}
	return nil
}
