package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// errorResponse is the error body the client extracts messages from.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeRepoError maps a repository error to a response.
func writeRepoError(w http.ResponseWriter, err error, notFound string) {
	var verr *apperrors.ValidationError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message())
	case errors.Is(err, errForbidden):
		writeError(w, http.StatusForbidden, "You are not allowed to change this resource")
	default:
		log.Err(err).Msg("Repository operation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

var errForbidden = errors.New("forbidden")

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": s.stamp()})
	}
}
