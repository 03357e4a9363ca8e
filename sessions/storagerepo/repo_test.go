package storagerepo_test

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/learnpath-client/sessions/storagerepo"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func repoContract(t *testing.T, repo storagerepo.Repo) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Get(ctx, storagerepo.KeyToken)
	require.ErrorIs(t, err, storagerepo.ErrNotFound)

	require.NoError(t, repo.Set(ctx, map[string]string{
		storagerepo.KeyToken:       "tok-1",
		storagerepo.KeyCurrentUser: `{"id":"u-1"}`,
	}))

	tok, err := repo.Get(ctx, storagerepo.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	user, err := repo.Get(ctx, storagerepo.KeyCurrentUser)
	require.NoError(t, err)
	require.Equal(t, `{"id":"u-1"}`, user)

	require.NoError(t, repo.Remove(ctx, storagerepo.KeyToken, storagerepo.KeyCurrentUser))
	_, err = repo.Get(ctx, storagerepo.KeyCurrentUser)
	require.ErrorIs(t, err, storagerepo.ErrNotFound)

	// Removing missing keys is not an error
	require.NoError(t, repo.Remove(ctx, storagerepo.KeyToken))
}

func TestInMemoryRepo(t *testing.T) {
	repoContract(t, storagerepo.NewInMemoryRepo())
}

func TestFileRepo(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		repo, err := storagerepo.NewFileRepo(filepath.Join(t.TempDir(), "nested", "session.json"), "")
		require.NoError(t, err)
		repoContract(t, repo)
	})

	t.Run("sealed", func(t *testing.T) {
		repo, err := storagerepo.NewFileRepo(filepath.Join(t.TempDir(), "session.json"), testKey)
		require.NoError(t, err)
		repoContract(t, repo)
	})
}

func TestFileRepo_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first, err := storagerepo.NewFileRepo(path, testKey)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, map[string]string{storagerepo.KeyToken: "tok-1"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "tok-1")

	second, err := storagerepo.NewFileRepo(path, testKey)
	require.NoError(t, err)
	tok, err := second.Get(ctx, storagerepo.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
}

func TestFileRepo_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo, err := storagerepo.NewFileRepo(path, "")
	require.NoError(t, err)

	_, err = repo.Get(ctx, storagerepo.KeyToken)
	require.Error(t, err)

	// A write replaces the corrupt document
	require.NoError(t, repo.Set(ctx, map[string]string{storagerepo.KeyToken: "tok-2"}))
	tok, err := repo.Get(ctx, storagerepo.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-2", tok)
}

func TestFileRepo_WrongKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	repo, err := storagerepo.NewFileRepo(path, testKey)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, map[string]string{storagerepo.KeyToken: "tok-1"}))

	other := make([]byte, 32)
	other[0] = 0xff
	wrong, err := storagerepo.NewFileRepo(path, hex.EncodeToString(other))
	require.NoError(t, err)

	_, err = wrong.Get(ctx, storagerepo.KeyToken)
	require.Error(t, err)
}

func TestNewFileRepo_InvalidKey(t *testing.T) {
	_, err := storagerepo.NewFileRepo("session.json", "abc")
	require.Error(t, err)

	_, err = storagerepo.NewFileRepo("", "")
	require.Error(t, err)
}

func TestRedisRepo(t *testing.T) {
	url := os.Getenv("LEARNPATH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LEARNPATH_TEST_REDIS_URL not set")
	}

	client, err := storagerepo.DialRedis(context.Background(), url)
	require.NoError(t, err)
	defer client.Close()

	repo, err := storagerepo.NewRedisRepo(client, "learnpath:test:"+t.Name())
	require.NoError(t, err)
	repoContract(t, repo)
}

func TestNewRedisRepo_RequiresClient(t *testing.T) {
	_, err := storagerepo.NewRedisRepo(nil, "key")
	require.Error(t, err)
}
