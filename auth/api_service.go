package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/learnpath-client/apiclient"
	"github.com/jrsteele09/learnpath-client/internal/validate"
	"github.com/jrsteele09/learnpath-client/sessions"
	"github.com/jrsteele09/learnpath-client/users"
)

const (
	LoginPath       = "/auth/login"
	GoogleLoginPath = "/auth/google"
	CurrentUserPath = "/users/me"
	LogoutPath      = "/auth/logout"
)

var _ sessions.Authenticator = (*APIService)(nil)

// APIService talks to the backend's authentication endpoints.
type APIService struct {
	client *apiclient.Client
}

func NewAPIService(client *apiclient.Client) (*APIService, error) {
	if client == nil {
		return nil, errors.New("[AuthService New] api client is required")
	}
	return &APIService{client: client}, nil
}

// CurrentUser fetches the user that token belongs to.
func (s *APIService) CurrentUser(ctx context.Context, token string) (users.User, error) {
	var u users.User
	if err := s.client.Get(apiclient.WithToken(ctx, token), CurrentUserPath, nil, &u); err != nil {
		return users.User{}, fmt.Errorf("[AuthService CurrentUser] %w", err)
	}
	return u, nil
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

func (s *APIService) LoginWithGoogle(ctx context.Context, credential string) (sessions.LoginPayload, error) {
	var payload sessions.LoginPayload
	if err := s.client.Post(ctx, GoogleLoginPath, googleLoginRequest{Credential: credential}, &payload); err != nil {
		return sessions.LoginPayload{}, fmt.Errorf("[AuthService LoginWithGoogle] %w", err)
	}
	return payload, nil
}

type passwordLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginWithPassword validates the inputs locally before sending them.
func (s *APIService) LoginWithPassword(ctx context.Context, email, password string) (sessions.LoginPayload, error) {
	email = strings.TrimSpace(email)
	v := validate.New().
		Required("email", email, "Email is required").
		Custom("email", email != "" && !strings.Contains(email, "@"), "Please enter a valid email address").
		Required("password", password, "Password is required")
	if err := v.Err(); err != nil {
		return sessions.LoginPayload{}, err
	}

	var payload sessions.LoginPayload
	if err := s.client.Post(ctx, LoginPath, passwordLoginRequest{Email: email, Password: password}, &payload); err != nil {
		return sessions.LoginPayload{}, fmt.Errorf("[AuthService LoginWithPassword] %w", err)
	}
	return payload, nil
}

// RevokeToken asks the backend to stop accepting token. The session store
// never calls it; logging out locally needs no network.
func (s *APIService) RevokeToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Post(apiclient.WithToken(ctx, token), LogoutPath, nil, nil); err != nil {
		return fmt.Errorf("[AuthService RevokeToken] %w", err)
	}
	return nil
}
