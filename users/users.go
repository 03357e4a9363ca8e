package users

import (
	"encoding/json"
	"fmt"
	"strings"
)

// User is the canonical identity held by the session. Backends disagree on
// field names (`id` vs `_id`, `profilePicture` vs `picture`); decoding
// resolves them once so downstream code only ever reads ID.
type User struct {
	ID             string `json:"id,omitempty"`             // Canonical identifier
	Username       string `json:"username,omitempty"`       // Unique handle
	Name           string `json:"name,omitempty"`           // Display name
	Email          string `json:"email,omitempty"`          // Email address
	ProfilePicture string `json:"profilePicture,omitempty"` // Optional avatar reference
	Bio            string `json:"bio,omitempty"`
}

// wireUser accepts every identity spelling seen in API payloads.
type wireUser struct {
	ID             string `json:"id"`
	MongoID        string `json:"_id"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
	Picture        string `json:"picture"`
	Bio            string `json:"bio"`
}

// UnmarshalJSON resolves identity field aliases into the canonical User.
func (u *User) UnmarshalJSON(data []byte) error {
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("[users User.UnmarshalJSON] %w", err)
	}
	*u = User{
		ID:             firstNonEmpty(w.ID, w.MongoID, w.UserID),
		Username:       w.Username,
		Name:           w.Name,
		Email:          w.Email,
		ProfilePicture: firstNonEmpty(w.ProfilePicture, w.Picture),
		Bio:            w.Bio,
	}
	return nil
}

// Resolve decodes a raw user payload into the canonical User.
func Resolve(data []byte) (User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// IsZero reports whether no identity information is present.
func (u User) IsZero() bool {
	return u.ID == "" && u.Username == "" && u.Name == "" && u.Email == ""
}

// DisplayName picks the label shown in navigation: username, then name, then email.
func (u User) DisplayName() string {
	return firstNonEmpty(u.Username, u.Name, u.Email)
}

// Initial is the avatar placeholder letter when no profile picture is set.
func (u User) Initial() string {
	name := strings.TrimSpace(u.DisplayName())
	if name == "" {
		return "?"
	}
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
