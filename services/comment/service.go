package comment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/learnpath-client/apiclient"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/internal/validate"
)

const (
	MinLength = 2
	MaxLength = 500

	// ReferenceTypePost is the reference type used for comments on posts.
	ReferenceTypePost = "POST"
)

// Comment as returned by the backend.
type Comment struct {
	ID              string `json:"id,omitempty"`
	UserID          string `json:"userId,omitempty"`
	Content         string `json:"content"`
	ReferenceType   string `json:"referenceType,omitempty"`
	ReferenceID     string `json:"referenceId,omitempty"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
	Likes           int    `json:"likes,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

// Service wraps the /comments endpoints.
type Service struct {
	client    *apiclient.Client
	blockList BlockList
}

// NewService creates a comment Service. blockList may be nil.
func NewService(client *apiclient.Client, blockList BlockList) (*Service, error) {
	if client == nil {
		return nil, errors.New("[CommentService New] api client is required")
	}
	if blockList == nil {
		blockList = &PatternBlockList{}
	}
	return &Service{client: client, blockList: blockList}, nil
}

// Validate checks comment content. Both length bounds apply to the trimmed
// text. A block-list match takes precedence over any length message.
func Validate(content string, blockList BlockList) error {
	trimmed := strings.TrimSpace(content)
	var message string
	switch {
	case content == "":
		message = "Comment cannot be empty"
	case trimmed == "":
		message = "Comment cannot be just whitespace"
	case utf8.RuneCountInString(trimmed) > MaxLength:
		message = fmt.Sprintf("Comment is too long (maximum %d characters)", MaxLength)
	case utf8.RuneCountInString(trimmed) < MinLength:
		message = fmt.Sprintf("Comment is too short (minimum %d characters)", MinLength)
	}

	if blockList != nil && blockList.Matches(content) {
		message = "Comment appears to contain promotional content"
	}
	if message == "" {
		return nil
	}
	return apperrors.NewValidationError("content", message)
}

// Validate checks content against the service's block list.
func (s *Service) Validate(content string) error {
	return Validate(content, s.blockList)
}

type addRequest struct {
	Content         string `json:"content"`
	UserID          string `json:"userId,omitempty"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
	ReferenceType   string `json:"referenceType"`
	ReferenceID     string `json:"referenceId"`
}

// AddComment posts c as a comment on postID.
func (s *Service) AddComment(ctx context.Context, postID string, c Comment) (Comment, error) {
	if err := s.Validate(c.Content); err != nil {
		return Comment{}, err
	}
	if err := validate.New().Required("referenceId", postID, "Post ID is required").Err(); err != nil {
		return Comment{}, err
	}

	req := addRequest{
		Content:         c.Content,
		UserID:          c.UserID,
		ParentCommentID: c.ParentCommentID,
		ReferenceType:   ReferenceTypePost,
		ReferenceID:     postID,
	}
	var created Comment
	if err := s.client.Post(ctx, "/comments", req, &created); err != nil {
		return Comment{}, fmt.Errorf("[CommentService AddComment] %w", err)
	}
	return created, nil
}

type updateRequest struct {
	Content string `json:"content"`
}

// UpdateComment sends only the new content.
func (s *Service) UpdateComment(ctx context.Context, commentID, content string) (Comment, error) {
	if err := s.Validate(content); err != nil {
		return Comment{}, err
	}
	if err := requireCommentID(commentID); err != nil {
		return Comment{}, err
	}

	var updated Comment
	if err := s.client.Put(ctx, "/comments/"+apiclient.Escape(commentID), updateRequest{Content: content}, &updated); err != nil {
		return Comment{}, fmt.Errorf("[CommentService UpdateComment] %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	if err := requireCommentID(commentID); err != nil {
		return err
	}
	if err := s.client.Delete(ctx, "/comments/"+apiclient.Escape(commentID), nil); err != nil {
		return fmt.Errorf("[CommentService DeleteComment] %w", err)
	}
	return nil
}

func (s *Service) LikeComment(ctx context.Context, commentID string) error {
	if err := requireCommentID(commentID); err != nil {
		return err
	}
	if err := s.client.Put(ctx, "/comments/"+apiclient.Escape(commentID)+"/like", nil, nil); err != nil {
		return fmt.Errorf("[CommentService LikeComment] %w", err)
	}
	return nil
}

// GetCommentsByReference lists every comment attached to a reference.
func (s *Service) GetCommentsByReference(ctx context.Context, referenceType, referenceID string) ([]Comment, error) {
	return s.listByReference(ctx, "/comments/references", referenceType, referenceID)
}

// GetTopLevelComments lists comments on a reference that are not replies.
func (s *Service) GetTopLevelComments(ctx context.Context, referenceType, referenceID string) ([]Comment, error) {
	return s.listByReference(ctx, "/comments/top-level/references", referenceType, referenceID)
}

// GetReplies lists the replies to a comment.
func (s *Service) GetReplies(ctx context.Context, parentID string) ([]Comment, error) {
	if err := requireCommentID(parentID); err != nil {
		return nil, err
	}
	var out []Comment
	if err := s.client.Get(ctx, "/comments/replies/"+apiclient.Escape(parentID), nil, &out); err != nil {
		return nil, fmt.Errorf("[CommentService GetReplies] %w", err)
	}
	return out, nil
}

func (s *Service) listByReference(ctx context.Context, path, referenceType, referenceID string) ([]Comment, error) {
	err := validate.New().
		Required("referenceType", referenceType, "Reference type is required").
		Required("referenceId", referenceID, "Reference ID is required").
		Err()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("referenceType", referenceType)
	q.Set("referenceId", referenceID)

	var out []Comment
	if err := s.client.Get(ctx, path, q, &out); err != nil {
		return nil, fmt.Errorf("[CommentService %s] %w", path, err)
	}
	return out, nil
}

func requireCommentID(id string) error {
	return validate.New().Required("commentId", id, "Comment ID is required").Err()
}
