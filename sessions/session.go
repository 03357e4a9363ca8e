package sessions

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/learnpath-client/users"
)

// Session is the authenticated identity held by the Store. A token and a
// user are either both present or both absent.
type Session struct {
	User  users.User // Canonical user
	Token string     // Opaque bearer credential
}

// IsZero reports whether the session is empty.
func (s Session) IsZero() bool {
	return s.Token == "" && s.User.IsZero()
}

// Phase is the restore state of the Store.
type Phase int

const (
	// PhaseEmpty means no session has been restored or established.
	PhaseEmpty Phase = iota
	// PhasePendingValidation holds the persisted snapshot while the backend confirms it.
	PhasePendingValidation
	// PhaseConfirmed is an authenticated session backed by fresh server data.
	PhaseConfirmed
	// PhaseRejected is a restore that failed validation; storage has been cleared.
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhasePendingValidation:
		return "pending-validation"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRejected:
		return "rejected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// LoginPayload is what the backend returns from a login endpoint. Some
// endpoints answer with a bare user object and no token.
type LoginPayload struct {
	User  users.User `json:"user"`
	Token string     `json:"token,omitempty"`
}

// UnmarshalJSON accepts either {"user":{...},"token":"..."} or a bare user.
func (p *LoginPayload) UnmarshalJSON(data []byte) error {
	var envelope struct {
		User  json.RawMessage `json:"user"`
		Token string          `json:"token"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("[sessions LoginPayload.UnmarshalJSON] %w", err)
	}

	userData := []byte(envelope.User)
	if len(bytes.TrimSpace(userData)) == 0 || bytes.Equal(bytes.TrimSpace(userData), []byte("null")) {
		userData = data
	}

	u, err := users.Resolve(userData)
	if err != nil {
		return fmt.Errorf("[sessions LoginPayload.UnmarshalJSON] %w", err)
	}
	*p = LoginPayload{User: u, Token: envelope.Token}
	return nil
}
