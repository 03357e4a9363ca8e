package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jrsteele09/learnpath-client/auth/google"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/sessions/storagerepo"
	"github.com/jrsteele09/learnpath-client/token"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/rs/zerolog/log"
)

// Authenticator is the backend collaborator used by the Store.
type Authenticator interface {
	// CurrentUser fetches the canonical user the token belongs to
	CurrentUser(ctx context.Context, token string) (users.User, error)

	// LoginWithGoogle exchanges a Google credential for a session payload
	LoginWithGoogle(ctx context.Context, credential string) (LoginPayload, error)

	// LoginWithPassword exchanges email and password for a session payload
	LoginWithPassword(ctx context.Context, email, password string) (LoginPayload, error)
}

// Store is the single owner of the current session. It persists the session
// through a storage repo and restores it at startup.
type Store struct {
	mu       sync.RWMutex
	repo     storagerepo.Repo
	authn    Authenticator
	verifier *google.Verifier

	session Session
	phase   Phase
	loading bool
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once
	cancel    context.CancelFunc

	subscribers map[int]func(Session)
	nextSubID   int
}

type StoreOption func(*Store)

// WithGoogleVerifier verifies Google credentials locally before exchanging them.
func WithGoogleVerifier(v *google.Verifier) StoreOption {
	return func(s *Store) {
		s.verifier = v
	}
}

// NewStore creates a Store. Loading reports true until the first restore completes.
func NewStore(repo storagerepo.Repo, authn Authenticator, opts ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[Store New] storage repo is required")
	}
	if authn == nil {
		return nil, errors.New("[Store New] authenticator is required")
	}

	s := &Store{
		repo:        repo,
		authn:       authn,
		phase:       PhaseEmpty,
		loading:     true,
		ready:       make(chan struct{}),
		subscribers: make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init starts restoring the persisted session in the background.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.ErrStoreClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.Restore(ctx)
	return nil
}

// Teardown closes the store. In-flight restore results are discarded.
func (s *Store) Teardown() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.subscribers = make(map[int]func(Session))
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.markReady()
}

// Restore reads the persisted token and user and validates them with the
// backend. It always reaches a terminal phase before Loading clears. A Login
// or Logout that lands while restoring wins over the restore result.
func (s *Store) Restore(ctx context.Context) Phase {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return PhaseEmpty
	}
	s.loading = true
	start := restoreGuard{token: s.session.Token, phase: s.phase}
	s.mu.Unlock()
	defer s.finishLoading()

	rawToken, tokErr := s.repo.Get(ctx, storagerepo.KeyToken)
	rawUser, userErr := s.repo.Get(ctx, storagerepo.KeyCurrentUser)
	for _, err := range []error{tokErr, userErr} {
		if err != nil && !errors.Is(err, storagerepo.ErrNotFound) {
			log.Warn().Err(err).Msg("Session storage unavailable, continuing without a session")
		}
	}

	if tokErr != nil || userErr != nil || rawToken == "" || rawUser == "" {
		// Half a session is never restored
		halfSession := tokErr == nil || userErr == nil
		return s.resolve(ctx, start, Session{}, PhaseEmpty, halfSession)
	}

	var snapshot users.User
	if err := json.Unmarshal([]byte(rawUser), &snapshot); err != nil {
		log.Err(err).Msg("Persisted user snapshot is unreadable")
		return s.resolve(ctx, start, Session{}, PhaseRejected, true)
	}

	if token.IsExpired(rawToken) {
		log.Info().Msg("Persisted token has expired")
		return s.resolve(ctx, start, Session{}, PhaseRejected, true)
	}

	s.mu.Lock()
	if s.closed || !start.holds(s) {
		phase := s.phase
		s.mu.Unlock()
		return phase
	}
	s.session = Session{User: snapshot, Token: rawToken}
	s.phase = PhasePendingValidation
	current := s.session
	s.mu.Unlock()
	s.notify(current)

	pending := restoreGuard{token: rawToken, phase: PhasePendingValidation}
	fresh, err := s.authn.CurrentUser(ctx, rawToken)
	if err != nil {
		log.Err(err).Msg("Token validation failed")
		return s.resolve(ctx, pending, Session{}, PhaseRejected, true)
	}

	if fresh.ID == "" {
		fresh.ID = snapshot.ID
	}
	return s.resolve(ctx, pending, Session{User: fresh, Token: rawToken}, PhaseConfirmed, false)
}

// restoreGuard is the session state a restore step expects to still hold.
type restoreGuard struct {
	token string
	phase Phase
}

func (g restoreGuard) holds(s *Store) bool {
	return s.session.Token == g.token && s.phase == g.phase
}

// resolve moves a restore to its terminal phase. The guard check, the state
// change and the storage write happen under one lock hold so a concurrent
// Login or Logout is never overwritten. A confirmed session is persisted,
// otherwise storage is cleared when clearStored is set.
func (s *Store) resolve(ctx context.Context, expect restoreGuard, session Session, phase Phase, clearStored bool) Phase {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return PhaseEmpty
	}
	if !expect.holds(s) {
		// Logged in or out while restoring
		current := s.phase
		s.mu.Unlock()
		return current
	}
	s.session = session
	s.phase = phase
	switch {
	case phase == PhaseConfirmed:
		s.persist(ctx, session)
	case clearStored:
		s.clearStorage(ctx)
	}
	s.mu.Unlock()

	s.notify(session)
	return phase
}

// Login establishes a session from a payload the caller already obtained
// from the backend. No network call is made.
func (s *Store) Login(payload LoginPayload) error {
	if payload.User.IsZero() {
		return apperrors.ErrMissingUser
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.ErrStoreClosed
	}
	tok := payload.Token
	if tok == "" {
		// A bare user payload keeps the token already held
		tok = s.session.Token
	}
	if tok == "" {
		s.mu.Unlock()
		return apperrors.ErrMissingToken
	}
	s.session = Session{User: payload.User, Token: tok}
	s.phase = PhaseConfirmed
	current := s.session
	s.mu.Unlock()

	s.persist(context.Background(), current)
	s.notify(current)
	return nil
}

// LoginWithGoogle exchanges the credential in resp with the backend and logs
// in with the result. Backend rejections are returned as AuthenticationError.
func (s *Store) LoginWithGoogle(ctx context.Context, resp google.Response) (LoginPayload, error) {
	credential, err := google.Credential(resp)
	if err != nil {
		return LoginPayload{}, &apperrors.AuthenticationError{Reason: "google response carried no credential", Cause: err}
	}

	if s.verifier != nil {
		if _, err := s.verifier.Verify(ctx, credential); err != nil {
			log.Err(err).Msg("Google credential failed local verification")
			return LoginPayload{}, err
		}
	}

	payload, err := s.authn.LoginWithGoogle(ctx, credential)
	if err != nil {
		log.Err(err).Msg("Google login failed")
		return LoginPayload{}, asAuthenticationError("google credential rejected", err)
	}

	if err := s.Login(payload); err != nil {
		return LoginPayload{}, err
	}
	return payload, nil
}

// LoginWithPassword authenticates with email and password and logs in with the result.
func (s *Store) LoginWithPassword(ctx context.Context, email, password string) (LoginPayload, error) {
	payload, err := s.authn.LoginWithPassword(ctx, email, password)
	if err != nil {
		log.Err(err).Msg("Login failed")
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			return LoginPayload{}, err
		}
		return LoginPayload{}, asAuthenticationError("invalid credentials", err)
	}

	if err := s.Login(payload); err != nil {
		return LoginPayload{}, err
	}
	return payload, nil
}

// Logout clears the session and persisted entries. No network call is made.
func (s *Store) Logout() {
	s.mu.Lock()
	s.session = Session{}
	s.phase = PhaseEmpty
	s.mu.Unlock()

	s.clearStorage(context.Background())
	s.notify(Session{})
}

// UpdateCurrentUser replaces the user and re-persists the snapshot. The token
// is left untouched.
func (s *Store) UpdateCurrentUser(u users.User) error {
	s.mu.Lock()
	if s.session.IsZero() {
		s.mu.Unlock()
		return apperrors.ErrNoSession
	}
	if u.ID == "" {
		u.ID = s.session.User.ID
	}
	s.session.User = u
	current := s.session
	s.mu.Unlock()

	if err := s.repo.Set(context.Background(), map[string]string{storagerepo.KeyCurrentUser: marshalUser(u)}); err != nil {
		log.Err(err).Msg("Failed to persist user snapshot")
	}
	s.notify(current)
	return nil
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// CurrentUser returns the user and whether a session exists.
func (s *Store) CurrentUser() (users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User, !s.session.IsZero()
}

// Token returns the bearer credential, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.session.IsZero()
}

func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// WaitReady blocks until the first restore completes or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn for every session change. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.markReady()
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Store) persist(ctx context.Context, session Session) {
	err := s.repo.Set(ctx, map[string]string{
		storagerepo.KeyToken:       session.Token,
		storagerepo.KeyCurrentUser: marshalUser(session.User),
	})
	if err != nil {
		log.Err(err).Msg("Failed to persist session")
	}
}

func (s *Store) clearStorage(ctx context.Context) {
	if err := s.repo.Remove(context.WithoutCancel(ctx), storagerepo.KeyToken, storagerepo.KeyCurrentUser); err != nil {
		log.Err(err).Msg("Failed to clear session storage")
	}
}

func (s *Store) notify(session Session) {
	s.mu.RLock()
	subs := make([]func(Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(session)
	}
}

func marshalUser(u users.User) string {
	data, err := json.Marshal(u)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// asAuthenticationError treats any backend answer to a login request as a
// rejection. Failures with no response stay transport errors.
func asAuthenticationError(reason string, err error) error {
	var authErr *apperrors.AuthenticationError
	if errors.As(err, &authErr) {
		return err
	}
	var transportErr *apperrors.TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode == 0 {
		return err
	}
	return &apperrors.AuthenticationError{Reason: reason, Cause: err}
}
