package progress

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/paths"
)

// CompletedMilestone records when a milestone was ticked off.
type CompletedMilestone struct {
	MilestoneID string `json:"milestoneId"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// Progress is a user's record of working through one learning path.
type Progress struct {
	ID                  string               `json:"id,omitempty"`
	UserID              string               `json:"userId,omitempty"`
	LearningPathID      string               `json:"learningPathId,omitempty"`
	CompletedMilestones []CompletedMilestone `json:"completedMilestones,omitempty"`
	Percentage          float64              `json:"percentage"`
	IsComplete          bool                 `json:"isComplete"`
	StartedAt           string               `json:"startedAt,omitempty"`
	CompletedAt         string               `json:"completedAt,omitempty"`
	Notes               string               `json:"notes,omitempty"`
	Likes               int                  `json:"likes"`
	Badges              []string             `json:"badges,omitempty"`

	// LearningPath is filled by GetProgressDetail; empty when enrichment failed.
	LearningPath paths.LearningPath `json:"learningPath"`
}

// UnmarshalJSON accepts `_id` as an alias for `id`.
func (p *Progress) UnmarshalJSON(data []byte) error {
	type plain Progress
	var w struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("[progress Progress.UnmarshalJSON] %w", err)
	}
	*p = Progress(w.plain)
	if p.ID == "" {
		p.ID = w.MongoID
	}
	return nil
}

// Detail is the composite read returned by GetProgressDetail. Enrichment is
// set when the learning path could not be fetched.
type Detail struct {
	Progress
	Enrichment *apperrors.PartialFailure `json:"-"`
}
