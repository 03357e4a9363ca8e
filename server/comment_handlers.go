package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/internal/validate"
	"github.com/jrsteele09/learnpath-client/services/comment"
)

const commentNotFound = "Comment not found"

func (s *Server) CreateCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req comment.Comment
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := comment.Validate(req.Content, s.blockList); err != nil {
			writeRepoError(w, err, "")
			return
		}
		err := validate.New().
			Required("referenceType", req.ReferenceType, "Reference type is required").
			Required("referenceId", req.ReferenceID, "Reference ID is required").
			Err()
		if err != nil {
			writeRepoError(w, err, "")
			return
		}
		if req.ParentCommentID != "" {
			parent, err := s.data.Comments.Get(req.ParentCommentID)
			if err != nil {
				writeRepoError(w, err, "Parent comment not found")
				return
			}
			if parent.ReferenceType != req.ReferenceType || parent.ReferenceID != req.ReferenceID {
				writeRepoError(w, apperrors.NewValidationError("parentCommentId", "Reply must belong to the same reference"), "")
				return
			}
		}

		now := s.stamp()
		req.UserID = userIDFrom(r)
		req.Likes = 0
		req.CreatedAt, req.UpdatedAt = now, now
		created, err := s.data.Comments.Insert(req)
		if err != nil {
			writeRepoError(w, err, "")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

type commentUpdateRequest struct {
	Content string `json:"content"`
}

func (s *Server) UpdateCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commentUpdateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := comment.Validate(req.Content, s.blockList); err != nil {
			writeRepoError(w, err, "")
			return
		}
		userID := userIDFrom(r)
		updated, err := s.data.Comments.Update(chi.URLParam(r, "id"), func(c *comment.Comment) error {
			if c.UserID != userID {
				return errForbidden
			}
			c.Content = req.Content
			c.UpdatedAt = s.stamp()
			return nil
		})
		if err != nil {
			writeRepoError(w, err, commentNotFound)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteCommentHandler removes a comment together with its replies.
func (s *Server) DeleteCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		c, err := s.data.Comments.Get(id)
		if err != nil {
			writeRepoError(w, err, commentNotFound)
			return
		}
		if c.UserID != userIDFrom(r) {
			writeRepoError(w, errForbidden, "")
			return
		}
		for _, reply := range s.data.Comments.Find(func(c comment.Comment) bool { return c.ParentCommentID == id }) {
			_ = s.data.Comments.Delete(reply.ID)
		}
		if err := s.data.Comments.Delete(id); err != nil {
			writeRepoError(w, err, commentNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) LikeCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := s.data.Comments.Update(chi.URLParam(r, "id"), func(c *comment.Comment) error {
			c.Likes++
			return nil
		})
		if err != nil {
			writeRepoError(w, err, commentNotFound)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// CommentsByReferenceHandler lists comments on a reference. With topLevel
// set, replies are left out.
func (s *Server) CommentsByReferenceHandler(topLevel bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refType := r.URL.Query().Get("referenceType")
		refID := r.URL.Query().Get("referenceId")
		err := validate.New().
			Required("referenceType", refType, "Reference type is required").
			Required("referenceId", refID, "Reference ID is required").
			Err()
		if err != nil {
			writeRepoError(w, err, "")
			return
		}
		writeJSON(w, http.StatusOK, s.data.Comments.Find(func(c comment.Comment) bool {
			if topLevel && c.ParentCommentID != "" {
				return false
			}
			return c.ReferenceType == refType && c.ReferenceID == refID
		}))
	}
}

func (s *Server) RepliesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID := chi.URLParam(r, "id")
		writeJSON(w, http.StatusOK, s.data.Comments.Find(func(c comment.Comment) bool {
			return c.ParentCommentID == parentID
		}))
	}
}
