package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/learnpath-client/internal/validate"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/posts"
	"github.com/jrsteele09/learnpath-client/posts/media"
)

func (s *Server) CreatePathHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paths.CreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		v := validate.New().
			Required("title", req.Title, "Title is required").
			Required("description", req.Description, "Description is required").
			Custom("difficulty", !req.Difficulty.Valid(), "Difficulty must be Beginner, Intermediate or Advanced").
			Custom("duration", req.DurationDays <= 0, "Duration must be a positive number of days").
			Custom("milestones", len(req.Milestones) == 0, "At least one milestone is required")
		for i, m := range req.Milestones {
			field := fmt.Sprintf("milestones[%d]", i)
			v.Required(field+".title", m.Title, "Milestone title is required").
				Custom(field+".estimatedDays", m.EstimatedDays <= 0, "Milestone estimated days must be positive")
		}
		if err := v.Err(); err != nil {
			writeRepoError(w, err, "")
			return
		}

		milestones := make([]paths.Milestone, len(req.Milestones))
		for i, m := range req.Milestones {
			if m.ID == "" {
				m.ID = uuid.New().String()
			}
			m.OrderIndex = i
			milestones[i] = m
		}
		created, err := s.data.Paths.Insert(paths.LearningPath{
			UserID:       userIDFrom(r),
			Title:        strings.TrimSpace(req.Title),
			Description:  req.Description,
			Requirements: req.Requirements,
			Difficulty:   req.Difficulty,
			DurationDays: req.DurationDays,
			Tags:         req.Tags,
			Tips:         req.Tips,
			Milestones:   milestones,
			IsPublic:     req.IsPublic,
			CreatedAt:    s.stamp(),
		})
		if err != nil {
			writeRepoError(w, err, "")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) GetPathHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.data.Paths.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err, "Learning path not found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// ListPathsHandler lists public learning paths.
func (s *Server) ListPathsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.Paths.Find(func(p paths.LearningPath) bool {
			return p.IsPublic
		}))
	}
}

func (s *Server) CreatePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posts.CreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		err := validate.New().
			Required("title", req.Title, "Title is required").
			Required("content", req.Content, "Content is required").
			Custom("mediaUrls", len(req.MediaURLs) > media.MaxItems, media.MsgLimit).
			Err()
		if err != nil {
			writeRepoError(w, err, "")
			return
		}

		created, err := s.data.Posts.Insert(posts.Post{
			UserID:    userIDFrom(r),
			Title:     strings.TrimSpace(req.Title),
			Content:   req.Content,
			Image:     req.Image,
			MediaURLs: req.MediaURLs,
			Tags:      req.Tags,
			CreatedAt: s.stamp(),
		})
		if err != nil {
			writeRepoError(w, err, "")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) GetPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.data.Posts.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err, "Post not found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) ListPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.Posts.Find(nil))
	}
}
