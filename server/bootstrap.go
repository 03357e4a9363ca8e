package server

import (
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/rs/zerolog/log"
)

const DefaultSeedUsername = "demo"

// InitialiseSystem creates the seed account configured for local use. It is
// a no-op when seeding is disabled or the account already exists.
func (s *Server) InitialiseSystem() error {
	email := normaliseEmail(s.config.GetDevSeedEmail())
	if email == "" {
		return nil
	}

	_, err := s.accounts.GetByEmail(email)
	if err == nil {
		log.Debug().Str("email", email).Msg("Seed account already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check for the seed account: %w", err)
	}

	hash, err := users.HashPassword(s.config.GetDevSeedPassword())
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account := &users.Account{
		User: users.User{
			Email:    email,
			Username: DefaultSeedUsername,
			Name:     "Demo Learner",
		},
		PasswordHash: hash,
	}
	if err := s.accounts.Upsert(account); err != nil {
		return fmt.Errorf("failed to create seed account: %w", err)
	}

	log.Info().Str("email", email).Str("user_id", account.ID).Msg("Created seed account")
	return nil
}
