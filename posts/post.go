package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/learnpath-client/apiclient"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
)

// Post is a community post as returned by the backend.
type Post struct {
	ID        string   `json:"id,omitempty"`
	UserID    string   `json:"userId,omitempty"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Image     string   `json:"image,omitempty"`
	MediaURLs []string `json:"mediaUrls,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Likes     int      `json:"likes"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts `_id` as an alias for `id`.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	var w struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("[posts Post.UnmarshalJSON] %w", err)
	}
	*p = Post(w.plain)
	if p.ID == "" {
		p.ID = w.MongoID
	}
	return nil
}

// CreateRequest is the payload of POST /posts. Image repeats the first media
// reference for older readers.
type CreateRequest struct {
	UserID    string   `json:"userId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Image     string   `json:"image,omitempty"`
	MediaURLs []string `json:"mediaUrls,omitempty"`
}

// Service wraps the /posts endpoints.
type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[PostService New] api client is required")
	}
	return &Service{client: client}, nil
}

// Create posts req and returns the id of the new post.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	var created Post
	if err := s.client.Post(ctx, "/posts", req, &created); err != nil {
		return "", fmt.Errorf("[PostService Create] %w", err)
	}
	if created.ID == "" {
		return "", apperrors.Wrapf(apperrors.ErrEmptyResponse, "[PostService Create] response carried no id")
	}
	return created.ID, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	if id == "" {
		return Post{}, apperrors.NewValidationError("id", "Post ID is required")
	}
	var p Post
	if err := s.client.Get(ctx, "/posts/"+apiclient.Escape(id), nil, &p); err != nil {
		return Post{}, fmt.Errorf("[PostService Get] %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Post, error) {
	var out []Post
	if err := s.client.Get(ctx, "/posts", nil, &out); err != nil {
		return nil, fmt.Errorf("[PostService List] %w", err)
	}
	return out, nil
}
