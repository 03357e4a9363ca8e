package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/learnpath-client/apiclient"
	"github.com/jrsteele09/learnpath-client/auth"
	"github.com/jrsteele09/learnpath-client/auth/google"
	"github.com/jrsteele09/learnpath-client/internal/config"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/posts"
	"github.com/jrsteele09/learnpath-client/posts/media"
	"github.com/jrsteele09/learnpath-client/services/comment"
	"github.com/jrsteele09/learnpath-client/services/progress"
	"github.com/jrsteele09/learnpath-client/sessions"
	"github.com/jrsteele09/learnpath-client/sessions/storagerepo"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/rs/zerolog/log"
)

// App holds the wired client for one CLI process.
type App struct {
	Config    config.Config
	Store     *sessions.Store
	Auth      *auth.APIService
	Paths     *paths.Service
	Progress  *progress.Service
	Comments  *comment.Service
	Posts     *posts.Service
	Previewer media.Previewer

	closeStorage func() error
}

type AppOption func(*appOptions)

type appOptions struct {
	storage    storagerepo.Repo
	httpClient *http.Client
}

// WithStorage replaces the configured storage backend.
func WithStorage(repo storagerepo.Repo) AppOption {
	return func(o *appOptions) {
		o.storage = repo
	}
}

func WithHTTPClient(hc *http.Client) AppOption {
	return func(o *appOptions) {
		o.httpClient = hc
	}
}

// NewApp wires storage, the API client, the session store and every service.
func NewApp(ctx context.Context, cfg config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("[App New] config is required")
	}
	o := appOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, closeStorage: func() error { return nil }}
	storage := o.storage
	if storage == nil {
		repo, closer, err := storagerepo.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("[App New] failed to open session storage: %w", err)
		}
		storage, app.closeStorage = repo, closer
	}

	var clientOpts []apiclient.Option
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	client, err := apiclient.New(cfg, apiclient.TokenFunc(app.token), clientOpts...)
	if err != nil {
		return nil, err
	}

	if app.Auth, err = auth.NewAPIService(client); err != nil {
		return nil, err
	}

	var storeOpts []sessions.StoreOption
	if clientID := cfg.GetGoogleClientID(); clientID != "" {
		vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		verifier, err := google.NewVerifier(vctx, clientID)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Google verifier unavailable, credentials will only be checked by the backend")
		} else {
			storeOpts = append(storeOpts, sessions.WithGoogleVerifier(verifier))
		}
	}
	if app.Store, err = sessions.NewStore(storage, app.Auth, storeOpts...); err != nil {
		return nil, err
	}

	if app.Paths, err = paths.NewService(client); err != nil {
		return nil, err
	}
	if app.Progress, err = progress.NewService(client, app.Paths); err != nil {
		return nil, err
	}
	blockList, err := comment.NewPatternBlockList(cfg.GetSpamPatterns()...)
	if err != nil {
		return nil, err
	}
	if app.Comments, err = comment.NewService(client, blockList); err != nil {
		return nil, err
	}
	if app.Posts, err = posts.NewService(client); err != nil {
		return nil, err
	}
	if app.Previewer, err = media.NewPreviewer(ctx, cfg); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) token() string {
	if a.Store == nil {
		return ""
	}
	return a.Store.Token()
}

// RequireUser restores the persisted session and returns its user.
func (a *App) RequireUser(ctx context.Context) (users.User, error) {
	if user, ok := a.Store.CurrentUser(); ok && a.Store.Phase() == sessions.PhaseConfirmed {
		return user, nil
	}
	if phase := a.Store.Restore(ctx); phase != sessions.PhaseConfirmed {
		return users.User{}, &apperrors.AuthenticationError{Reason: "not logged in, run `learnpath login` first", Cause: apperrors.ErrNoSession}
	}
	user, _ := a.Store.CurrentUser()
	return user, nil
}

func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Teardown()
	}
	return a.closeStorage()
}
