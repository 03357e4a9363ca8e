package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/learnpath-client/internal/config"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// TokenProvider supplies the bearer credential of the current session.
type TokenProvider interface {
	Token() string
}

// TokenFunc adapts a function to TokenProvider. It lets the client be built
// before the session store that will supply its tokens.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client issues JSON requests against the backend REST API. Paths are
// relative to the configured base URL.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is wrapped so
// that bearer tokens are still attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client. tokens may be nil for unauthenticated use.
func New(cfg config.APIConfig, tokens TokenProvider, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("[apiclient New] config is required")
	}
	base := cfg.GetAPIBaseURL()
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base url %q: %w", base, err)
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.GetHTTPTimeout()},
	}
	if rps := cfg.GetRateLimitRPS(); rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), cfg.GetRateLimitBurst())
	}
	for _, opt := range opts {
		opt(c)
	}

	wrapped := *c.http
	wrapped.Transport = &bearerTransport{tokens: tokens, base: c.http.Transport}
	c.http = &wrapped
	return c, nil
}

type tokenOverrideKey struct{}

// WithToken makes requests issued with ctx use token instead of the session's.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenOverrideKey{}, token)
}

// bearerTransport attaches the session token through an oauth2.Transport.
// Requests made while logged out go out without an Authorization header.
type bearerTransport struct {
	tokens TokenProvider
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, _ := req.Context().Value(tokenOverrideKey{}).(string)
	if tok == "" && t.tokens != nil {
		tok = t.tokens.Token()
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if tok == "" {
		return base.RoundTrip(req)
	}

	transport := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   base,
	}
	return transport.RoundTrip(req)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request and decodes the JSON response into out when out is
// non-nil. Non-2xx answers become a TransportError, or an
// AuthenticationError for 401 and 403. No request is ever retried.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &apperrors.TransportError{Method: method, Path: path, Cause: err}
		}
	}

	target := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[apiclient Do] failed to encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("[apiclient Do] %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("Request failed")
		return &apperrors.TransportError{Method: method, Path: path, Cause: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		transportErr := &apperrors.TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		log.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Str("request_id", requestID).Msg("API returned an error status")

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return &apperrors.AuthenticationError{Reason: http.StatusText(resp.StatusCode), Cause: transportErr}
		}
		return transportErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// 204 and empty 200 bodies leave out untouched
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apperrors.TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Escape formats a path segment.
func Escape(segment string) string {
	return url.PathEscape(segment)
}
