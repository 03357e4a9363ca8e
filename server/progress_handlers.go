package server

import (
	"cmp"
	"math"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/internal/utils"
	"github.com/jrsteele09/learnpath-client/internal/validate"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/services/progress"
)

const (
	recentProgressLimit = 5
	progressNotFound    = "Progress not found"
)

// updateOwnProgress applies fn to the progress named in the route, refusing
// records that belong to another user.
func (s *Server) updateOwnProgress(w http.ResponseWriter, r *http.Request, fn func(*progress.Progress) error) {
	userID := userIDFrom(r)
	updated, err := s.data.Progress.Update(chi.URLParam(r, "id"), func(p *progress.Progress) error {
		if p.UserID != userID {
			return errForbidden
		}
		return fn(p)
	})
	if err != nil {
		writeRepoError(w, err, progressNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// recompute sets the percentage from the completed share of the path's
// milestones. A path that cannot be found counts as having none.
func (s *Server) recompute(p *progress.Progress) {
	path, err := s.data.Paths.Get(p.LearningPathID)
	if err != nil || len(path.Milestones) == 0 {
		p.Percentage = 0
		return
	}
	done := 0
	for _, m := range path.Milestones {
		if completedIndex(p, m.ID) >= 0 {
			done++
		}
	}
	p.Percentage = math.Round(float64(done)/float64(len(path.Milestones))*10000) / 100
}

func completedIndex(p *progress.Progress, milestoneID string) int {
	return slices.IndexFunc(p.CompletedMilestones, func(c progress.CompletedMilestone) bool {
		return c.MilestoneID == milestoneID
	})
}

func (s *Server) CreateProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req progress.Progress
		if !decodeJSON(w, r, &req) {
			return
		}
		userID := userIDFrom(r)
		if req.UserID == "" {
			req.UserID = userID
		}
		err := validate.New().
			Required("learningPathId", req.LearningPathID, "Learning path ID is required").
			Err()
		if err != nil {
			writeRepoError(w, err, "")
			return
		}
		if req.UserID != userID {
			writeRepoError(w, errForbidden, "")
			return
		}
		if _, err := s.data.Paths.Get(req.LearningPathID); err != nil {
			writeRepoError(w, err, "Learning path not found")
			return
		}
		existing := s.data.Progress.Find(func(p progress.Progress) bool {
			return p.UserID == req.UserID && p.LearningPathID == req.LearningPathID
		})
		if len(existing) > 0 {
			writeError(w, http.StatusConflict, "Progress already exists for this learning path")
			return
		}

		if req.StartedAt == "" {
			req.StartedAt = s.stamp()
		}
		req.LearningPath = paths.LearningPath{}
		s.recompute(&req)
		created, err := s.data.Progress.Insert(req)
		if err != nil {
			writeRepoError(w, err, "")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) GetProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.data.Progress.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err, progressNotFound)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) UserProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		writeJSON(w, http.StatusOK, s.data.Progress.Find(func(p progress.Progress) bool {
			return p.UserID == userID
		}))
	}
}

// lastActivity is the latest timestamp recorded on p. Stamps are RFC 3339 in
// UTC so they order as strings.
func lastActivity(p progress.Progress) string {
	latest := max(p.StartedAt, p.CompletedAt)
	for _, c := range p.CompletedMilestones {
		latest = max(latest, c.CompletedAt)
	}
	return latest
}

// RecentProgressHandler lists the user's most recently active entries.
func (s *Server) RecentProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		list := s.data.Progress.Find(func(p progress.Progress) bool {
			return p.UserID == userID
		})
		slices.SortStableFunc(list, func(a, b progress.Progress) int {
			return cmp.Compare(lastActivity(b), lastActivity(a))
		})
		if len(list) > recentProgressLimit {
			list = list[:recentProgressLimit]
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) ProgressByUserAndPathHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, pathID := chi.URLParam(r, "userId"), chi.URLParam(r, "pathId")
		found := s.data.Progress.Find(func(p progress.Progress) bool {
			return p.UserID == userID && p.LearningPathID == pathID
		})
		if len(found) == 0 {
			writeError(w, http.StatusNotFound, progressNotFound)
			return
		}
		writeJSON(w, http.StatusOK, found[0])
	}
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) UpdateNotesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notesRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		s.updateOwnProgress(w, r, func(p *progress.Progress) error {
			p.Notes = req.Notes
			return nil
		})
	}
}

func (s *Server) DeleteProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := s.data.Progress.Get(id)
		if err != nil {
			writeRepoError(w, err, progressNotFound)
			return
		}
		if p.UserID != userIDFrom(r) {
			writeRepoError(w, errForbidden, "")
			return
		}
		if err := s.data.Progress.Delete(id); err != nil {
			writeRepoError(w, err, progressNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CompleteMilestoneHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req progress.CompletedMilestone
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := validate.New().Required("milestoneId", req.MilestoneID, "Milestone ID is required").Err(); err != nil {
			writeRepoError(w, err, "")
			return
		}
		s.updateOwnProgress(w, r, func(p *progress.Progress) error {
			if completedIndex(p, req.MilestoneID) >= 0 {
				return nil
			}
			if req.CompletedAt == "" {
				req.CompletedAt = s.stamp()
			}
			p.CompletedMilestones = append(p.CompletedMilestones, req)
			s.recompute(p)
			return nil
		})
	}
}

func (s *Server) UncompleteMilestoneHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		milestoneID := chi.URLParam(r, "milestoneId")
		s.updateOwnProgress(w, r, func(p *progress.Progress) error {
			i := completedIndex(p, milestoneID)
			if i < 0 {
				return apperrors.ErrNotFound
			}
			p.CompletedMilestones = slices.Delete(slices.Clone(p.CompletedMilestones), i, i+1)
			p.IsComplete = false
			p.CompletedAt = ""
			s.recompute(p)
			return nil
		})
	}
}

func (s *Server) RecomputePercentageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.updateOwnProgress(w, r, func(p *progress.Progress) error {
			s.recompute(p)
			return nil
		})
	}
}

type percentageRequest struct {
	Percentage *float64 `json:"percentage"`
}

func (s *Server) ManualPercentageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req percentageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Percentage == nil {
			writeError(w, http.StatusBadRequest, "Percentage is required")
			return
		}
		value := *req.Percentage
		if value < 0 || value > 100 {
			writeError(w, http.StatusBadRequest, "Percentage must be between 0 and 100")
			return
		}
		s.updateOwnProgress(w, r, func(p *progress.Progress) error {
			p.Percentage = value
			return nil
		})
	}
}

type completeRequest struct {
	IsComplete  *bool   `json:"isComplete"`
	CompletedAt *string `json:"completedAt"`
}

// MarkCompleteHandler flags a record complete, which pins the percentage to
// 100, or reopens it with a recomputed percentage.
func (s *Server) MarkCompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.IsComplete == nil {
			writeError(w, http.StatusBadRequest, "Completion status must be a boolean")
			return
		}
		s.updateOwnProgress(w, r, func(p *progress.Progress) error {
			p.IsComplete = *req.IsComplete
			if !p.IsComplete {
				p.CompletedAt = ""
				s.recompute(p)
				return nil
			}
			p.CompletedAt = cmp.Or(utils.Value(req.CompletedAt), s.stamp())
			p.Percentage = 100
			return nil
		})
	}
}

func (s *Server) LikeProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := s.data.Progress.Update(chi.URLParam(r, "id"), func(p *progress.Progress) error {
			p.Likes++
			return nil
		})
		if err != nil {
			writeRepoError(w, err, progressNotFound)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) AwardBadgeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		badge := chi.URLParam(r, "badge")
		s.updateOwnProgress(w, r, func(p *progress.Progress) error {
			if !slices.Contains(p.Badges, badge) {
				p.Badges = append(p.Badges, badge)
			}
			return nil
		})
	}
}
