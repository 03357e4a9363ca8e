package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/learnpath-client/apiclient"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/internal/utils"
	"github.com/jrsteele09/learnpath-client/internal/validate"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/rs/zerolog/log"
)

// PathFetcher loads the learning path used to enrich a progress detail.
type PathFetcher interface {
	Get(ctx context.Context, id string) (paths.LearningPath, error)
}

// Service wraps the /progress endpoints. Every mutating call is validated
// locally and issues at most one request.
type Service struct {
	client  *apiclient.Client
	paths   PathFetcher
	nowTime func() time.Time
}

type ServiceOption func(*Service)

// WithNowTime overrides the clock used for startedAt and completedAt stamps.
func WithNowTime(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = now
	}
}

func NewService(client *apiclient.Client, pathFetcher PathFetcher, opts ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[ProgressService New] api client is required")
	}
	if pathFetcher == nil {
		return nil, errors.New("[ProgressService New] path fetcher is required")
	}
	s := &Service{client: client, paths: pathFetcher, nowTime: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) stamp() string {
	return s.nowTime().UTC().Format(time.RFC3339)
}

func requireUserID(userID string) error {
	return validate.New().Required("userId", userID, "User ID is required").Err()
}

func requireProgressID(progressID string) error {
	return validate.New().Required("progressId", progressID, "Progress ID is required").Err()
}

func progressPath(id string, rest ...string) string {
	p := "/progress/" + apiclient.Escape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// GetUserProgress lists all progress entries of a user.
func (s *Service) GetUserProgress(ctx context.Context, userID string) ([]Progress, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	var out []Progress
	if err := s.client.Get(ctx, "/progress/users/"+apiclient.Escape(userID), nil, &out); err != nil {
		return nil, fmt.Errorf("[ProgressService GetUserProgress] %w", err)
	}
	return out, nil
}

// GetProgressDetail fetches a progress record and enriches it with its
// learning path. A failed enrichment leaves an empty LearningPath and is
// reported through Detail.Enrichment, never as an error.
func (s *Service) GetProgressDetail(ctx context.Context, progressID string) (Detail, error) {
	if err := requireProgressID(progressID); err != nil {
		return Detail{}, err
	}

	var p Progress
	if err := s.client.Get(ctx, progressPath(progressID), nil, &p); err != nil {
		return Detail{}, fmt.Errorf("[ProgressService GetProgressDetail] %w", err)
	}

	detail := Detail{Progress: p}
	detail.LearningPath = paths.LearningPath{}

	if p.LearningPathID == "" {
		detail.Enrichment = &apperrors.PartialFailure{Field: "learningPath", Cause: apperrors.ErrNotFound}
		log.Warn().Str("progress_id", progressID).Msg("Progress has no learning path id")
		return detail, nil
	}

	lp, err := s.paths.Get(ctx, p.LearningPathID)
	if err != nil {
		detail.Enrichment = &apperrors.PartialFailure{Field: "learningPath", Cause: err}
		log.Err(err).Str("progress_id", progressID).Str("learning_path_id", p.LearningPathID).Msg("Error fetching learning path details")
		return detail, nil
	}
	detail.LearningPath = lp
	return detail, nil
}

// GetProgressByUserAndPath fetches the user's progress on one path.
func (s *Service) GetProgressByUserAndPath(ctx context.Context, userID, pathID string) (Progress, error) {
	err := validate.New().
		Required("userId", userID, "User ID is required").
		Required("learningPathId", pathID, "Learning path ID is required").
		Err()
	if err != nil {
		return Progress{}, err
	}

	var p Progress
	path := "/progress/users/" + apiclient.Escape(userID) + "/paths/" + apiclient.Escape(pathID)
	if err := s.client.Get(ctx, path, nil, &p); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService GetProgressByUserAndPath] %w", err)
	}
	return p, nil
}

// CreateProgress posts a new progress record.
func (s *Service) CreateProgress(ctx context.Context, p Progress) (Progress, error) {
	err := validate.New().
		Required("learningPathId", p.LearningPathID, "Learning path ID is required").
		Required("userId", p.UserID, "User ID is required").
		Err()
	if err != nil {
		return Progress{}, err
	}

	var created Progress
	if err := s.client.Post(ctx, "/progress", p, &created); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService CreateProgress] %w", err)
	}
	return created, nil
}

type startRequest struct {
	LearningPathID string `json:"learningPathId"`
	UserID         string `json:"userId"`
	StartedAt      string `json:"startedAt"`
}

// StartProgress begins tracking pathID for userID.
func (s *Service) StartProgress(ctx context.Context, pathID, userID string) (Progress, error) {
	err := validate.New().
		Required("learningPathId", pathID, "Learning path ID is required").
		Required("userId", userID, "User ID is required").
		Err()
	if err != nil {
		return Progress{}, err
	}

	var created Progress
	req := startRequest{LearningPathID: pathID, UserID: userID, StartedAt: s.stamp()}
	if err := s.client.Post(ctx, "/progress", req, &created); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService StartProgress] %w", err)
	}
	return created, nil
}

// CompleteMilestone marks milestoneID as done.
func (s *Service) CompleteMilestone(ctx context.Context, progressID, milestoneID string) (Progress, error) {
	err := validate.New().
		Required("progressId", progressID, "Progress ID is required").
		Required("milestoneId", milestoneID, "Milestone ID is required").
		Err()
	if err != nil {
		return Progress{}, err
	}

	var updated Progress
	req := CompletedMilestone{MilestoneID: milestoneID, CompletedAt: s.stamp()}
	if err := s.client.Post(ctx, progressPath(progressID, "milestones"), req, &updated); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService CompleteMilestone] %w", err)
	}
	return updated, nil
}

// UncompleteMilestone removes milestoneID from the completed list.
func (s *Service) UncompleteMilestone(ctx context.Context, progressID, milestoneID string) (Progress, error) {
	err := validate.New().
		Required("progressId", progressID, "Progress ID is required").
		Required("milestoneId", milestoneID, "Milestone ID is required").
		Err()
	if err != nil {
		return Progress{}, err
	}

	var updated Progress
	if err := s.client.Delete(ctx, progressPath(progressID, "milestones", apiclient.Escape(milestoneID)), &updated); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService UncompleteMilestone] %w", err)
	}
	return updated, nil
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Service) UpdateNotes(ctx context.Context, progressID, notes string) (Progress, error) {
	if err := requireProgressID(progressID); err != nil {
		return Progress{}, err
	}

	var updated Progress
	if err := s.client.Put(ctx, progressPath(progressID), notesRequest{Notes: notes}, &updated); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService UpdateNotes] %w", err)
	}
	return updated, nil
}

// UpdateProgressPercentage asks the backend to recompute the percentage
// from completed milestones.
func (s *Service) UpdateProgressPercentage(ctx context.Context, progressID string) error {
	if err := requireProgressID(progressID); err != nil {
		return err
	}
	if err := s.client.Put(ctx, progressPath(progressID, "percentage"), nil, nil); err != nil {
		return fmt.Errorf("[ProgressService UpdateProgressPercentage] %w", err)
	}
	return nil
}

// ParsePercentage converts user input into a percentage, rejecting
// non-numeric text and values outside [0, 100].
func ParsePercentage(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, apperrors.NewValidationError("percentage", "Percentage is required")
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("percentage", "Percentage must be a valid number")
	}
	if err := validatePercentage(value); err != nil {
		return 0, err
	}
	return value, nil
}

func validatePercentage(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return apperrors.NewValidationError("percentage", "Percentage must be a valid number")
	}
	if value < 0 || value > 100 {
		return apperrors.NewValidationError("percentage", "Percentage must be between 0 and 100")
	}
	return nil
}

type percentageRequest struct {
	Percentage float64 `json:"percentage"`
}

// UpdateManualPercentage sets an explicit percentage.
func (s *Service) UpdateManualPercentage(ctx context.Context, progressID string, percentage float64) (Progress, error) {
	if err := requireProgressID(progressID); err != nil {
		return Progress{}, err
	}
	if err := validatePercentage(percentage); err != nil {
		return Progress{}, err
	}

	var updated Progress
	if err := s.client.Put(ctx, progressPath(progressID, "manual-percentage"), percentageRequest{Percentage: percentage}, &updated); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService UpdateManualPercentage] %w", err)
	}
	return updated, nil
}

type completeRequest struct {
	IsComplete  bool    `json:"isComplete"`
	CompletedAt *string `json:"completedAt"`
}

// MarkAsComplete flags the progress complete or incomplete. completedAt is
// sent as null when isComplete is false.
func (s *Service) MarkAsComplete(ctx context.Context, progressID string, isComplete bool) (Progress, error) {
	if err := requireProgressID(progressID); err != nil {
		return Progress{}, err
	}

	req := completeRequest{IsComplete: isComplete}
	if isComplete {
		req.CompletedAt = utils.Ptr(s.stamp())
	}

	var updated Progress
	if err := s.client.Put(ctx, progressPath(progressID, "complete"), req, &updated); err != nil {
		return Progress{}, fmt.Errorf("[ProgressService MarkAsComplete] %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteProgress(ctx context.Context, progressID string) error {
	if err := requireProgressID(progressID); err != nil {
		return err
	}
	if err := s.client.Delete(ctx, progressPath(progressID), nil); err != nil {
		return fmt.Errorf("[ProgressService DeleteProgress] %w", err)
	}
	return nil
}

func (s *Service) LikeProgress(ctx context.Context, progressID string) error {
	if err := requireProgressID(progressID); err != nil {
		return err
	}
	if err := s.client.Put(ctx, progressPath(progressID, "like"), nil, nil); err != nil {
		return fmt.Errorf("[ProgressService LikeProgress] %w", err)
	}
	return nil
}

// AwardBadge attaches a named badge to the progress record.
func (s *Service) AwardBadge(ctx context.Context, progressID, badge string) error {
	err := validate.New().
		Required("progressId", progressID, "Progress ID is required").
		Required("badge", badge, "Badge is required").
		Err()
	if err != nil {
		return err
	}
	if err := s.client.Put(ctx, progressPath(progressID, "badges", apiclient.Escape(badge)), nil, nil); err != nil {
		return fmt.Errorf("[ProgressService AwardBadge] %w", err)
	}
	return nil
}

func (s *Service) GetRecentProgress(ctx context.Context, userID string) ([]Progress, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	var out []Progress
	if err := s.client.Get(ctx, "/progress/users/"+apiclient.Escape(userID)+"/recent", nil, &out); err != nil {
		return nil, fmt.Errorf("[ProgressService GetRecentProgress] %w", err)
	}
	return out, nil
}
