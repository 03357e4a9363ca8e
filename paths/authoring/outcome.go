package authoring

import (
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
)

// Field names reported in an Outcome. The presentation layer maps them to
// the input it should focus.
const (
	FieldTitle                = "title"
	FieldDescription          = "description"
	FieldDifficulty           = "difficulty"
	FieldDuration             = "duration"
	FieldMilestoneTitle       = "milestone.title"
	FieldMilestoneDescription = "milestone.description"
	FieldMilestoneDays        = "milestone.estimatedDays"
	FieldUser                 = "user"
)

// NoMilestone is the MilestoneIndex of an Outcome not tied to a milestone.
const NoMilestone = -1

// Outcome is the result of a guarded form action. A failed Outcome names
// the field (and milestone) to focus instead of touching any UI.
type Outcome struct {
	OK             bool
	Field          string
	MilestoneIndex int
	Message        string
	Cause          error
}

func ok() Outcome {
	return Outcome{OK: true, MilestoneIndex: NoMilestone}
}

func fail(field, message string) Outcome {
	return Outcome{Field: field, MilestoneIndex: NoMilestone, Message: message}
}

func failMilestone(field string, index int, message string) Outcome {
	return Outcome{Field: field, MilestoneIndex: index, Message: message}
}

// Err converts a failed Outcome into an error. Outcomes caused by the
// backend keep that cause; the rest become a ValidationError.
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	if o.Cause != nil {
		return o.Cause
	}
	return apperrors.NewValidationError(o.Field, o.Message)
}
