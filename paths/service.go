package paths

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/learnpath-client/apiclient"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
)

// Service reads and creates learning paths.
type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[PathService New] api client is required")
	}
	return &Service{client: client}, nil
}

// Get fetches a learning path by id.
func (s *Service) Get(ctx context.Context, id string) (LearningPath, error) {
	if id == "" {
		return LearningPath{}, apperrors.NewValidationError("id", "Learning path ID is required")
	}
	var p LearningPath
	if err := s.client.Get(ctx, "/paths/"+apiclient.Escape(id), nil, &p); err != nil {
		return LearningPath{}, fmt.Errorf("[PathService Get] %w", err)
	}
	return p, nil
}

// Create posts req and returns the id of the new learning path.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, "/paths", req, &raw); err != nil {
		return "", fmt.Errorf("[PathService Create] %w", err)
	}
	if len(raw) == 0 {
		return "", apperrors.Wrapf(apperrors.ErrEmptyResponse, "[PathService Create]")
	}
	id, err := CreatedID(raw)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", apperrors.Wrapf(apperrors.ErrEmptyResponse, "[PathService Create] response carried no id")
	}
	return id, nil
}

// List returns the public learning paths.
func (s *Service) List(ctx context.Context) ([]LearningPath, error) {
	var out []LearningPath
	if err := s.client.Get(ctx, "/paths", nil, &out); err != nil {
		return nil, fmt.Errorf("[PathService List] %w", err)
	}
	return out, nil
}
