package sessions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/learnpath-client/auth/google"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/sessions"
	"github.com/jrsteele09/learnpath-client/sessions/authfakes"
	"github.com/jrsteele09/learnpath-client/sessions/storagerepo"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

const (
	testToken  = "opaque-token-1"
	testUserID = "user-1"
)

type testFixture struct {
	repo  *storagerepo.InMemoryRepo
	authn *authfakes.FakeAuthenticator
	store *sessions.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	repo := storagerepo.NewInMemoryRepo()
	authn := &authfakes.FakeAuthenticator{}
	store, err := sessions.NewStore(repo, authn)
	require.NoError(t, err)

	return &testFixture{repo: repo, authn: authn, store: store}
}

func (f *testFixture) persist(t *testing.T, token string, u users.User) {
	t.Helper()
	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.NoError(t, f.repo.Set(context.Background(), map[string]string{
		storagerepo.KeyToken:       token,
		storagerepo.KeyCurrentUser: string(data),
	}))
}

func (f *testFixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, err := f.repo.Get(context.Background(), key)
	if errors.Is(err, storagerepo.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

func TestNewStore_RequiresDependencies(t *testing.T) {
	_, err := sessions.NewStore(nil, &authfakes.FakeAuthenticator{})
	require.Error(t, err)

	_, err = sessions.NewStore(storagerepo.NewInMemoryRepo(), nil)
	require.Error(t, err)
}

func TestRestore_ConfirmsWithFreshUser(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, testToken, users.User{ID: testUserID, Username: "stale"})

	var observed sessions.Phase
	var observedUser users.User
	f.authn.CurrentUserFn = func(_ context.Context, token string) (users.User, error) {
		require.Equal(t, testToken, token)
		observed = f.store.Phase()
		observedUser = f.store.Current().User
		return users.User{ID: testUserID, Username: "fresh", Email: "fresh@example.com"}, nil
	}

	require.True(t, f.store.Loading())
	phase := f.store.Restore(context.Background())

	require.Equal(t, sessions.PhasePendingValidation, observed)
	require.Equal(t, "stale", observedUser.Username)

	require.Equal(t, sessions.PhaseConfirmed, phase)
	require.False(t, f.store.Loading())
	require.True(t, f.store.IsAuthenticated())
	require.Equal(t, "fresh", f.store.Current().User.Username)
	require.Equal(t, testToken, f.store.Token())

	raw, ok := f.stored(t, storagerepo.KeyCurrentUser)
	require.True(t, ok)
	require.Contains(t, raw, "fresh")
}

func TestRestore_RejectedTokenClearsStorage(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, testToken, users.User{ID: testUserID})

	f.authn.CurrentUserFn = func(context.Context, string) (users.User, error) {
		return users.User{}, &apperrors.AuthenticationError{Reason: "token expired"}
	}

	phase := f.store.Restore(context.Background())
	require.Equal(t, sessions.PhaseRejected, phase)
	require.False(t, f.store.IsAuthenticated())
	require.False(t, f.store.Loading())

	_, ok := f.stored(t, storagerepo.KeyToken)
	require.False(t, ok)
	_, ok = f.stored(t, storagerepo.KeyCurrentUser)
	require.False(t, ok)
}

func TestRestore_ExpiredJWTSkipsBackend(t *testing.T) {
	f := setupTestFixture(t)

	expired, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": testUserID,
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	f.persist(t, expired, users.User{ID: testUserID})

	phase := f.store.Restore(context.Background())
	require.Equal(t, sessions.PhaseRejected, phase)
	require.Equal(t, 0, f.authn.Calls("CurrentUser"))

	_, ok := f.stored(t, storagerepo.KeyToken)
	require.False(t, ok)
}

func TestRestore_NothingPersisted(t *testing.T) {
	f := setupTestFixture(t)

	phase := f.store.Restore(context.Background())
	require.Equal(t, sessions.PhaseEmpty, phase)
	require.False(t, f.store.IsAuthenticated())
	require.False(t, f.store.Loading())
	require.Equal(t, 0, f.authn.Calls("CurrentUser"))
	require.NoError(t, f.store.WaitReady(context.Background()))
}

func TestRestore_PartialSessionIsCleared(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Set(context.Background(), map[string]string{storagerepo.KeyToken: testToken}))

	phase := f.store.Restore(context.Background())
	require.Equal(t, sessions.PhaseEmpty, phase)

	_, ok := f.stored(t, storagerepo.KeyToken)
	require.False(t, ok)
}

func TestRestore_UnreadableSnapshot(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Set(context.Background(), map[string]string{
		storagerepo.KeyToken:       testToken,
		storagerepo.KeyCurrentUser: "{broken",
	}))

	phase := f.store.Restore(context.Background())
	require.Equal(t, sessions.PhaseRejected, phase)
	require.Equal(t, 0, f.authn.Calls("CurrentUser"))
}

// blockingRemoveRepo holds the first Remove until release is closed.
type blockingRemoveRepo struct {
	*storagerepo.InMemoryRepo
	removing chan struct{}
	release  chan struct{}
	once     sync.Once
}

func (r *blockingRemoveRepo) Remove(ctx context.Context, keys ...string) error {
	r.once.Do(func() {
		close(r.removing)
		<-r.release
	})
	return r.InMemoryRepo.Remove(ctx, keys...)
}

// brokenRepo fails every read as a damaged storage file would.
type brokenRepo struct {
	removes int
}

func (r *brokenRepo) Get(context.Context, string) (string, error) {
	return "", errors.New("read session.db: input/output error")
}

func (r *brokenRepo) Set(context.Context, map[string]string) error { return nil }

func (r *brokenRepo) Remove(context.Context, ...string) error {
	r.removes++
	return nil
}

func TestRestore_LoginDuringCleanupWins(t *testing.T) {
	repo := &blockingRemoveRepo{
		InMemoryRepo: storagerepo.NewInMemoryRepo(),
		removing:     make(chan struct{}),
		release:      make(chan struct{}),
	}
	authn := &authfakes.FakeAuthenticator{
		CurrentUserFn: func(context.Context, string) (users.User, error) {
			return users.User{}, &apperrors.AuthenticationError{Reason: "token revoked"}
		},
	}
	store, err := sessions.NewStore(repo, authn)
	require.NoError(t, err)

	data, err := json.Marshal(users.User{ID: testUserID})
	require.NoError(t, err)
	require.NoError(t, repo.Set(context.Background(), map[string]string{
		storagerepo.KeyToken:       testToken,
		storagerepo.KeyCurrentUser: string(data),
	}))

	restored := make(chan sessions.Phase, 1)
	go func() { restored <- store.Restore(context.Background()) }()
	<-repo.removing

	loggedIn := make(chan error, 1)
	go func() {
		loggedIn <- store.Login(sessions.LoginPayload{User: users.User{ID: testUserID}, Token: "fresh-token"})
	}()
	close(repo.release)

	require.Equal(t, sessions.PhaseRejected, <-restored)
	require.NoError(t, <-loggedIn)

	require.True(t, store.IsAuthenticated())
	require.Equal(t, sessions.PhaseConfirmed, store.Phase())
	require.Equal(t, "fresh-token", store.Token())

	stored, err := repo.Get(context.Background(), storagerepo.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "fresh-token", stored)
}

func TestRestore_LoginDuringValidationWins(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, testToken, users.User{ID: testUserID})

	f.authn.CurrentUserFn = func(context.Context, string) (users.User, error) {
		require.NoError(t, f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID}, Token: "fresh-token"}))
		return users.User{}, &apperrors.AuthenticationError{Reason: "token revoked"}
	}

	phase := f.store.Restore(context.Background())
	require.Equal(t, sessions.PhaseConfirmed, phase)
	require.Equal(t, "fresh-token", f.store.Token())

	tok, ok := f.stored(t, storagerepo.KeyToken)
	require.True(t, ok)
	require.Equal(t, "fresh-token", tok)
	_, ok = f.stored(t, storagerepo.KeyCurrentUser)
	require.True(t, ok)
}

func TestRestore_StorageReadFailureMeansNoSession(t *testing.T) {
	repo := &brokenRepo{}
	authn := &authfakes.FakeAuthenticator{}
	store, err := sessions.NewStore(repo, authn)
	require.NoError(t, err)

	var phase sessions.Phase
	require.NotPanics(t, func() { phase = store.Restore(context.Background()) })

	require.Equal(t, sessions.PhaseEmpty, phase)
	require.False(t, store.IsAuthenticated())
	require.False(t, store.Loading())
	require.Equal(t, 0, authn.Calls("CurrentUser"))
	require.Equal(t, 0, repo.removes)
	require.NoError(t, store.WaitReady(context.Background()))
}

func TestInitAndTeardown_DiscardsLateResult(t *testing.T) {
	f := setupTestFixture(t)
	f.persist(t, testToken, users.User{ID: testUserID})

	started := make(chan struct{})
	release := make(chan struct{})
	f.authn.CurrentUserFn = func(context.Context, string) (users.User, error) {
		close(started)
		<-release
		return users.User{}, errors.New("connection reset")
	}

	var notified int
	var mu sync.Mutex
	f.store.Subscribe(func(sessions.Session) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	require.NoError(t, f.store.Init(context.Background()))
	<-started

	mu.Lock()
	beforeTeardown := notified
	mu.Unlock()

	f.store.Teardown()
	close(release)
	require.NoError(t, f.store.WaitReady(context.Background()))

	// Give the restore goroutine time to observe the closed store
	require.Eventually(t, func() bool { return !f.store.Loading() }, time.Second, 5*time.Millisecond)

	_, ok := f.stored(t, storagerepo.KeyToken)
	require.True(t, ok, "late failure must not clear storage after teardown")

	mu.Lock()
	require.Equal(t, beforeTeardown, notified)
	mu.Unlock()

	require.ErrorIs(t, f.store.Init(context.Background()), apperrors.ErrStoreClosed)
}

func TestLogin(t *testing.T) {
	t.Run("persists token and user", func(t *testing.T) {
		f := setupTestFixture(t)

		require.NoError(t, f.store.Login(sessions.LoginPayload{
			User:  users.User{ID: testUserID, Email: "jane@example.com"},
			Token: testToken,
		}))

		require.True(t, f.store.IsAuthenticated())
		require.Equal(t, sessions.PhaseConfirmed, f.store.Phase())

		tok, ok := f.stored(t, storagerepo.KeyToken)
		require.True(t, ok)
		require.Equal(t, testToken, tok)

		raw, ok := f.stored(t, storagerepo.KeyCurrentUser)
		require.True(t, ok)
		require.JSONEq(t, `{"id":"user-1","email":"jane@example.com"}`, raw)
	})

	t.Run("bare user keeps existing token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID}, Token: testToken}))

		require.NoError(t, f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID, Name: "Jane"}}))
		require.Equal(t, testToken, f.store.Token())
		require.Equal(t, "Jane", f.store.Current().User.Name)
	})

	t.Run("no token at all", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID}})
		require.ErrorIs(t, err, apperrors.ErrMissingToken)
		require.False(t, f.store.IsAuthenticated())
	})

	t.Run("no user", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.store.Login(sessions.LoginPayload{Token: testToken})
		require.ErrorIs(t, err, apperrors.ErrMissingUser)
	})
}

func TestLoginWithGoogle(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupTestFixture(t)
		f.authn.LoginWithGoogleFn = func(_ context.Context, credential string) (sessions.LoginPayload, error) {
			require.Equal(t, "google.id.token", credential)
			return sessions.LoginPayload{User: users.User{ID: testUserID}, Token: testToken}, nil
		}

		payload, err := f.store.LoginWithGoogle(context.Background(), google.Response{Credential: "google.id.token"})
		require.NoError(t, err)
		require.Equal(t, testUserID, payload.User.ID)
		require.True(t, f.store.IsAuthenticated())
	})

	t.Run("backend rejection", func(t *testing.T) {
		f := setupTestFixture(t)
		f.authn.LoginWithGoogleFn = func(context.Context, string) (sessions.LoginPayload, error) {
			return sessions.LoginPayload{}, &apperrors.TransportError{Method: "POST", Path: "/auth/google", StatusCode: 400}
		}

		_, err := f.store.LoginWithGoogle(context.Background(), google.Response{Credential: "bad"})
		var authErr *apperrors.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		require.False(t, f.store.IsAuthenticated())
	})

	t.Run("network failure stays a transport error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.authn.LoginWithGoogleFn = func(context.Context, string) (sessions.LoginPayload, error) {
			return sessions.LoginPayload{}, &apperrors.TransportError{Method: "POST", Path: "/auth/google", Cause: errors.New("dial tcp")}
		}

		_, err := f.store.LoginWithGoogle(context.Background(), google.Response{Credential: "cred"})
		var transportErr *apperrors.TransportError
		require.ErrorAs(t, err, &transportErr)
	})

	t.Run("missing credential", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.store.LoginWithGoogle(context.Background(), google.Response{})
		require.ErrorIs(t, err, apperrors.ErrMissingCredential)
		require.Equal(t, 0, f.authn.Calls("LoginWithGoogle"))
	})
}

func TestLoginWithPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.authn.LoginWithPasswordFn = func(_ context.Context, email, password string) (sessions.LoginPayload, error) {
		if email == "jane@example.com" && password == "secret" {
			return sessions.LoginPayload{User: users.User{ID: testUserID, Email: email}, Token: testToken}, nil
		}
		return sessions.LoginPayload{}, &apperrors.AuthenticationError{Reason: "bad credentials"}
	}

	_, err := f.store.LoginWithPassword(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	require.False(t, f.store.IsAuthenticated())

	_, err = f.store.LoginWithPassword(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	require.True(t, f.store.IsAuthenticated())
}

func TestLoginWithPassword_ValidationErrorSurfacesUnchanged(t *testing.T) {
	f := setupTestFixture(t)
	f.authn.LoginWithPasswordFn = func(context.Context, string, string) (sessions.LoginPayload, error) {
		return sessions.LoginPayload{}, apperrors.NewValidationError("password", "Password is required")
	}

	var logs bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = previous })

	_, err := f.store.LoginWithPassword(context.Background(), "jane@example.com", "")

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "Password is required", validationErr.Field("password"))
	var authErr *apperrors.AuthenticationError
	require.False(t, errors.As(err, &authErr))

	require.Contains(t, logs.String(), "Login failed")
	require.NotContains(t, logs.String(), "jane@example.com")
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID}, Token: testToken}))

	f.store.Logout()

	require.False(t, f.store.IsAuthenticated())
	require.Equal(t, sessions.PhaseEmpty, f.store.Phase())
	_, ok := f.stored(t, storagerepo.KeyToken)
	require.False(t, ok)
	_, ok = f.stored(t, storagerepo.KeyCurrentUser)
	require.False(t, ok)
}

func TestUpdateCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	require.ErrorIs(t, f.store.UpdateCurrentUser(users.User{Name: "x"}), apperrors.ErrNoSession)

	require.NoError(t, f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID, Name: "Jane"}, Token: testToken}))
	require.NoError(t, f.store.UpdateCurrentUser(users.User{Name: "Jane Doe", Bio: "Learner"}))

	current := f.store.Current()
	require.Equal(t, testToken, current.Token)
	require.Equal(t, testUserID, current.User.ID)
	require.Equal(t, "Jane Doe", current.User.Name)

	raw, ok := f.stored(t, storagerepo.KeyCurrentUser)
	require.True(t, ok)
	require.Contains(t, raw, "Jane Doe")

	tok, ok := f.stored(t, storagerepo.KeyToken)
	require.True(t, ok)
	require.Equal(t, testToken, tok)
}

func TestSubscribe(t *testing.T) {
	f := setupTestFixture(t)

	var got []sessions.Session
	unsubscribe := f.store.Subscribe(func(s sessions.Session) { got = append(got, s) })

	require.NoError(t, f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID}, Token: testToken}))
	f.store.Logout()
	unsubscribe()
	require.NoError(t, f.store.Login(sessions.LoginPayload{User: users.User{ID: testUserID}, Token: testToken}))

	require.Len(t, got, 2)
	require.Equal(t, testUserID, got[0].User.ID)
	require.True(t, got[1].IsZero())
}

func TestWaitReady_RespectsContext(t *testing.T) {
	f := setupTestFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, f.store.WaitReady(ctx), context.DeadlineExceeded)
}

func TestLoginPayload_UnmarshalJSON(t *testing.T) {
	var envelope sessions.LoginPayload
	require.NoError(t, json.Unmarshal([]byte(`{"user":{"_id":"u-1","username":"jane"},"token":"t-1"}`), &envelope))
	require.Equal(t, "u-1", envelope.User.ID)
	require.Equal(t, "t-1", envelope.Token)

	var bare sessions.LoginPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u-2","email":"a@b.com"}`), &bare))
	require.Equal(t, "u-2", bare.User.ID)
	require.Empty(t, bare.Token)
}
