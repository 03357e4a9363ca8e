package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/learnpath-client/auth/google"
	"github.com/jrsteele09/learnpath-client/internal/config"
	"github.com/jrsteele09/learnpath-client/server/datarepo"
	"github.com/jrsteele09/learnpath-client/services/comment"
	"github.com/jrsteele09/learnpath-client/token"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/rs/zerolog/log"
)

const tokenIssuer = "learnpath-devapi"

// Server is the in-memory development backend. It implements the REST
// contract the client expects, with JSON bodies and bearer tokens.
type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	config    config.Config
	router    chi.Router
	routes    []string
	accounts  users.Repo
	data      datarepo.Repos
	tokens    *token.Creator
	google    *google.Verifier
	blockList comment.BlockList
	nowTime   func() time.Time
}

type Option func(*Server)

// WithGoogleVerifier verifies Google credentials instead of trusting their claims.
func WithGoogleVerifier(v *google.Verifier) Option {
	return func(s *Server) {
		s.google = v
	}
}

// WithBlockList rejects comments the block list matches.
func WithBlockList(b comment.BlockList) Option {
	return func(s *Server) {
		s.blockList = b
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = now
	}
}

func New(cfg config.Config, accounts users.Repo, data datarepo.Repos, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if accounts == nil {
		return nil, errors.New("[Server New] account repo is required")
	}
	if data.Paths == nil || data.Progress == nil || data.Comments == nil || data.Posts == nil {
		return nil, errors.New("[Server New] data repos are required")
	}

	tokens, err := token.NewCreator([]byte(cfg.GetDevTokenSecret()), tokenIssuer, cfg.GetDevTokenExpiry())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token creator: %w", err)
	}

	s := &Server{
		env:      cfg.GetEnv(),
		config:   cfg,
		router:   chi.NewRouter(),
		accounts: accounts,
		data:     data,
		tokens:   tokens,
		nowTime:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.InitialiseSystem(); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) stamp() string {
	return s.nowTime().UTC().Format(time.RFC3339)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		s.routes = append(s.routes, method+" "+route)
		logRoute(method, route)
		return nil
	})
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s%s%s] %s", color, paddedMethod, ResetColor, path)
}

// Routes lists the registered "METHOD /path" patterns in development mode.
func (s *Server) Routes() []string {
	return append([]string{}, s.routes...)
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
