package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common error values for the learnpath client
var (
	// Session errors
	ErrNoSession         = errors.New("no session")
	ErrStoreClosed       = errors.New("session store closed")
	ErrMissingToken      = errors.New("missing token")
	ErrMissingUser       = errors.New("missing user")
	ErrMissingCredential = errors.New("missing oauth credential")

	// Resource errors
	ErrNotFound      = errors.New("not found")
	ErrEmptyResponse = errors.New("empty response")

	// Draft errors
	ErrDraftClosed  = errors.New("draft closed")
	ErrMediaLimit   = errors.New("media limit reached")
	ErrMediaType    = errors.New("unsupported media type")
	ErrVideoTooLong = errors.New("video too long")
)

// ValidationError is a local, pre-network failure scoped to one or more fields.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Message()
}

// Message joins the field messages in field-name order.
func (e *ValidationError) Message() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Field returns the message recorded against field, if any.
func (e *ValidationError) Field(field string) string {
	return e.Fields[field]
}

// AuthenticationError means the backend rejected a token or an OAuth credential.
type AuthenticationError struct {
	Reason string
	Cause  error
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Cause)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

// TransportError is any collaborator or network failure. StatusCode is 0 when
// no response was received.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Cause      error
}

func (e *TransportError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Cause)
	case e.Body != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Cause }

// PartialFailure records a secondary fetch that failed while the primary succeeded.
type PartialFailure struct {
	Field string
	Cause error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("partial failure enriching %s: %v", e.Field, e.Cause)
}

func (e *PartialFailure) Unwrap() error { return e.Cause }

// UserMessage is the generic text shown for a failure that is not field scoped.
func UserMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return "Your session is no longer valid. Please log in again."
	}
	return fallback
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single import.
func New(text string) error {
	return errors.New(text)
}
