package paths_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/learnpath-client/apiclient"
	"github.com/jrsteele09/learnpath-client/internal/config"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T, handler http.HandlerFunc) *paths.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(config.API{BaseURL: srv.URL, HTTPTimeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	svc, err := paths.NewService(client)
	require.NoError(t, err)
	return svc
}

func TestCreatedID(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"id":"a","_id":"b"}`, "a"},
		{`{"_id":"b"}`, "b"},
		{`{"title":"x"}`, ""},
	}
	for _, tt := range tests {
		id, err := paths.CreatedID([]byte(tt.body))
		require.NoError(t, err)
		require.Equal(t, tt.want, id, tt.body)
	}

	_, err := paths.CreatedID([]byte(`[`))
	require.Error(t, err)
}

func TestLearningPath_IDAlias(t *testing.T) {
	var lp paths.LearningPath
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"lp1","title":"Go","duration":14}`), &lp))
	require.Equal(t, "lp1", lp.ID)
	require.Equal(t, 14, lp.DurationDays)
	require.False(t, lp.IsZero())

	require.True(t, paths.LearningPath{}.IsZero())
	data, err := json.Marshal(paths.LearningPath{})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(data))
}

func TestDifficulty(t *testing.T) {
	require.True(t, paths.Intermediate.Valid())
	require.False(t, paths.Difficulty("Expert").Valid())
}

func TestService_Create(t *testing.T) {
	var got map[string]interface{}
	svc := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/paths", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &got))
		_, _ = w.Write([]byte(`{"_id":"lp-9"}`))
	})

	id, err := svc.Create(context.Background(), paths.CreateRequest{
		Title:        "Go",
		Description:  "Learn Go",
		Difficulty:   paths.Beginner,
		DurationDays: 30,
		Milestones:   []paths.Milestone{{Title: "m", Description: "d", EstimatedDays: 1, Resources: []string{}}},
		IsPublic:     true,
		UserID:       "u1",
	})
	require.NoError(t, err)
	require.Equal(t, "lp-9", id)
	require.Equal(t, true, got["isPublic"])
	require.Equal(t, float64(30), got["duration"])
	require.Equal(t, "u1", got["userId"])
}

func TestService_CreateWithoutID(t *testing.T) {
	svc := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Go"}`))
	})
	_, err := svc.Create(context.Background(), paths.CreateRequest{Title: "Go"})
	require.ErrorIs(t, err, apperrors.ErrEmptyResponse)

	svc = setupService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	_, err = svc.Create(context.Background(), paths.CreateRequest{Title: "Go"})
	require.ErrorIs(t, err, apperrors.ErrEmptyResponse)
}

func TestService_Get(t *testing.T) {
	svc := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paths/lp1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"_id":"lp1","title":"Go","milestones":[{"title":"m","orderIndex":0}]}`))
	})

	lp, err := svc.Get(context.Background(), "lp1")
	require.NoError(t, err)
	require.Equal(t, "lp1", lp.ID)
	require.Len(t, lp.Milestones, 1)

	_, err = svc.Get(context.Background(), "other")
	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusNotFound, transportErr.StatusCode)

	_, err = svc.Get(context.Background(), "")
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
}
