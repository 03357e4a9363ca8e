package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/learnpath-client/apiclient"
	"github.com/jrsteele09/learnpath-client/internal/config"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newConfig(baseURL string) config.API {
	return config.API{BaseURL: baseURL, HTTPTimeout: 5 * time.Second, RateLimitBurst: 1}
}

func TestDo_AttachesBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/progress/p1", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get(apiclient.RequestIDHeader))
		_, _ = w.Write([]byte(`{"id":"p1","percentage":40}`))
	}))
	defer srv.Close()

	c, err := apiclient.New(newConfig(srv.URL+"/api/"), staticTokens("tok-1"))
	require.NoError(t, err)

	var out struct {
		ID         string  `json:"id"`
		Percentage float64 `json:"percentage"`
	}
	require.NoError(t, c.Get(context.Background(), "/progress/p1", nil, &out))
	require.Equal(t, "p1", out.ID)
	require.Equal(t, 40.0, out.Percentage)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := apiclient.New(newConfig(srv.URL), staticTokens(""))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, c.Delete(context.Background(), "/comments/c1", &out))
	require.Nil(t, out)
}

func TestDo_TokenOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer override", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := apiclient.New(newConfig(srv.URL), staticTokens("session"))
	require.NoError(t, err)
	require.NoError(t, c.Get(apiclient.WithToken(context.Background(), "override"), "/users/me", nil, &map[string]interface{}{}))
}

func TestDo_PostBodyAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "hello", body["content"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"c1"}`))
		case http.MethodGet:
			require.Equal(t, "POST", r.URL.Query().Get("referenceType"))
			require.Equal(t, "post-1", r.URL.Query().Get("referenceId"))
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c, err := apiclient.New(newConfig(srv.URL), nil)
	require.NoError(t, err)

	var created map[string]string
	require.NoError(t, c.Post(context.Background(), "/comments", map[string]string{"content": "hello"}, &created))
	require.Equal(t, "c1", created["id"])

	var list []interface{}
	q := url.Values{"referenceType": {"POST"}, "referenceId": {"post-1"}}
	require.NoError(t, c.Get(context.Background(), "/comments/references", q, &list))
}

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) {
			var authErr *apperrors.AuthenticationError
			require.ErrorAs(t, err, &authErr)
		}},
		{"forbidden", http.StatusForbidden, func(t *testing.T, err error) {
			var authErr *apperrors.AuthenticationError
			require.ErrorAs(t, err, &authErr)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var transportErr *apperrors.TransportError
			require.ErrorAs(t, err, &transportErr)
			require.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
			require.Equal(t, "boom", transportErr.Body)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("boom"))
			}))
			defer srv.Close()

			c, err := apiclient.New(newConfig(srv.URL), nil)
			require.NoError(t, err)
			tt.check(t, c.Get(context.Background(), "/x", nil, nil))
		})
	}
}

func TestDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := apiclient.New(newConfig(base), nil)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/x", nil, nil)
	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Zero(t, transportErr.StatusCode)
}

func TestDo_NoRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := apiclient.New(newConfig(srv.URL), nil)
	require.NoError(t, err)
	require.Error(t, c.Put(context.Background(), "/progress/p1/like", nil, nil))
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := apiclient.New(newConfig("not a url"), nil)
	require.Error(t, err)

	_, err = apiclient.New(nil, nil)
	require.Error(t, err)
}
