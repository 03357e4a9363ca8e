package paths

import (
	"encoding/json"
	"fmt"
)

// Difficulty of a learning path.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists the valid values in display order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Milestone is one ordered step of a learning path.
type Milestone struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	OrderIndex    int      `json:"orderIndex"`
	EstimatedDays int      `json:"estimatedDays"`
	Resources     []string `json:"resources"`
	Tips          string   `json:"tips,omitempty"`
}

// LearningPath as returned by the backend.
type LearningPath struct {
	ID           string      `json:"id,omitempty"`
	UserID       string      `json:"userId,omitempty"`
	Title        string      `json:"title,omitempty"`
	Description  string      `json:"description,omitempty"`
	Requirements string      `json:"requirements,omitempty"`
	Difficulty   Difficulty  `json:"difficulty,omitempty"`
	DurationDays int         `json:"duration,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Tips         string      `json:"tips,omitempty"`
	Milestones   []Milestone `json:"milestones,omitempty"`
	IsPublic     bool        `json:"isPublic,omitempty"`
	CreatedAt    string      `json:"createdAt,omitempty"`
}

// IsZero reports whether p is the empty placeholder.
func (p LearningPath) IsZero() bool {
	return p.ID == "" && p.Title == "" && len(p.Milestones) == 0
}

// UnmarshalJSON accepts `_id` as an alias for `id`.
func (p *LearningPath) UnmarshalJSON(data []byte) error {
	type plain LearningPath
	var w struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("[paths LearningPath.UnmarshalJSON] %w", err)
	}
	*p = LearningPath(w.plain)
	if p.ID == "" {
		p.ID = w.MongoID
	}
	return nil
}

// CreateRequest is the immutable payload sent to create a learning path.
type CreateRequest struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Requirements string      `json:"requirements"`
	Difficulty   Difficulty  `json:"difficulty"`
	DurationDays int         `json:"duration"`
	Tags         []string    `json:"tags"`
	Tips         string      `json:"tips"`
	Milestones   []Milestone `json:"milestones"`
	IsPublic     bool        `json:"isPublic"`
	UserID       string      `json:"userId"`
}

// CreatedID picks the new resource id from a create response, falling back
// from `id` to `_id`.
func CreatedID(data []byte) (string, error) {
	var ids struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return "", fmt.Errorf("[paths CreatedID] %w", err)
	}
	if ids.ID != "" {
		return ids.ID, nil
	}
	return ids.MongoID, nil
}
