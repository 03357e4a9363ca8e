package authfakes

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/sessions"
	"github.com/jrsteele09/learnpath-client/users"
)

var _ sessions.Authenticator = (*FakeAuthenticator)(nil)

// FakeAuthenticator answers from function fields. Unset functions reject.
type FakeAuthenticator struct {
	CurrentUserFn       func(ctx context.Context, token string) (users.User, error)
	LoginWithGoogleFn   func(ctx context.Context, credential string) (sessions.LoginPayload, error)
	LoginWithPasswordFn func(ctx context.Context, email, password string) (sessions.LoginPayload, error)

	lock  sync.Mutex
	calls map[string]int
}

func (f *FakeAuthenticator) CurrentUser(ctx context.Context, token string) (users.User, error) {
	f.record("CurrentUser")
	if f.CurrentUserFn == nil {
		return users.User{}, &apperrors.AuthenticationError{Reason: "no current user configured"}
	}
	return f.CurrentUserFn(ctx, token)
}

func (f *FakeAuthenticator) LoginWithGoogle(ctx context.Context, credential string) (sessions.LoginPayload, error) {
	f.record("LoginWithGoogle")
	if f.LoginWithGoogleFn == nil {
		return sessions.LoginPayload{}, &apperrors.AuthenticationError{Reason: "google login not configured"}
	}
	return f.LoginWithGoogleFn(ctx, credential)
}

func (f *FakeAuthenticator) LoginWithPassword(ctx context.Context, email, password string) (sessions.LoginPayload, error) {
	f.record("LoginWithPassword")
	if f.LoginWithPasswordFn == nil {
		return sessions.LoginPayload{}, &apperrors.AuthenticationError{Reason: "password login not configured"}
	}
	return f.LoginWithPasswordFn(ctx, email, password)
}

// Calls returns how often method was invoked.
func (f *FakeAuthenticator) Calls(method string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls[method]
}

func (f *FakeAuthenticator) record(method string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
}
