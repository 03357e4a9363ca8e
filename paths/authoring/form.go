package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/internal/validate"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/rs/zerolog/log"
)

// Step of the authoring workflow.
type Step string

const (
	StepBasic      Step = "basic"
	StepMilestones Step = "milestones"
	StepPreview    Step = "preview"
	StepSubmitted  Step = "submitted"
)

const (
	msgTitleNumeric        = "Title cannot contain only numbers"
	msgDescriptionNumeric  = "Description cannot contain only numbers"
	msgTitleMissing        = "Please enter a title for your learning path"
	msgDescriptionMissing  = "Please enter a description for your learning path"
	msgMilestoneBeforeAdd  = "Please fill in the title and description of the current milestone before adding a new one"
	msgMilestoneBeforeView = "All milestones must have a title and description before previewing"
	msgRequired            = "Title and description are required"
	msgCorrectErrors       = "Please correct the errors before submitting"
	msgMilestonesRequired  = "All milestones must have a title and description"
	msgNotLoggedIn         = "You must be logged in to create a learning path"
	msgCreateFailed        = "Failed to create learning path. Please try again."
)

// Creator dispatches the create request.
type Creator interface {
	Create(ctx context.Context, req paths.CreateRequest) (string, error)
}

// Identity supplies the acting user.
type Identity interface {
	CurrentUser() (users.User, bool)
}

// Form owns one learning path draft and its workflow state. It is not safe
// for concurrent use.
type Form struct {
	creator  Creator
	identity Identity

	draft       Draft
	step        Step
	fieldErrors map[string]string
	message     string
	createdID   string
}

func NewForm(creator Creator, identity Identity) (*Form, error) {
	if creator == nil {
		return nil, errors.New("[AuthoringForm New] creator is required")
	}
	if identity == nil {
		return nil, errors.New("[AuthoringForm New] identity is required")
	}
	return &Form{
		creator:     creator,
		identity:    identity,
		draft:       NewDraft(),
		step:        StepBasic,
		fieldErrors: make(map[string]string),
	}, nil
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft { return f.draft.Clone() }

func (f *Form) Step() Step { return f.step }

// Message is the form-level error, empty when none.
func (f *Form) Message() string { return f.message }

// FieldError returns the live format error for field.
func (f *Form) FieldError(field string) string { return f.fieldErrors[field] }

// CreatedID is the id of the learning path after a successful submit.
func (f *Form) CreatedID() string { return f.createdID }

// Cancel discards the draft and returns to the first step.
func (f *Form) Cancel() {
	f.draft = NewDraft()
	f.step = StepBasic
	f.fieldErrors = make(map[string]string)
	f.message = ""
	f.createdID = ""
}

func (f *Form) setFormatError(field, value, message string) Outcome {
	if validate.IsNumericOnly(value) {
		f.fieldErrors[field] = message
		return fail(field, message)
	}
	delete(f.fieldErrors, field)
	return ok()
}

// SetTitle updates the title and flags digit-only values. An empty value is
// not a format error.
func (f *Form) SetTitle(title string) Outcome {
	f.draft.Title = title
	return f.setFormatError(FieldTitle, title, msgTitleNumeric)
}

func (f *Form) SetDescription(description string) Outcome {
	f.draft.Description = description
	return f.setFormatError(FieldDescription, description, msgDescriptionNumeric)
}

func (f *Form) SetRequirements(requirements string) { f.draft.Requirements = requirements }

func (f *Form) SetTips(tips string) { f.draft.Tips = tips }

func (f *Form) SetDifficulty(d paths.Difficulty) Outcome {
	if !d.Valid() {
		return fail(FieldDifficulty, fmt.Sprintf("Unknown difficulty %q", d))
	}
	f.draft.Difficulty = d
	return ok()
}

func (f *Form) SetDuration(days int) Outcome {
	if days < 1 {
		return fail(FieldDuration, "Duration must be at least 1 day")
	}
	f.draft.DurationDays = days
	return ok()
}

// AddTag appends a trimmed tag unless it is empty or already present.
func (f *Form) AddTag(tag string) bool { return f.draft.addTag(tag) }

func (f *Form) RemoveTag(index int) bool { return f.draft.removeTag(index) }

// AddMilestone appends a blank milestone. It is rejected while the last
// milestone lacks a title or description.
func (f *Form) AddMilestone() Outcome {
	last := len(f.draft.Milestones) - 1
	if !milestoneComplete(f.draft.Milestones[last]) {
		f.message = msgMilestoneBeforeAdd
		return failMilestone(missingMilestoneField(f.draft.Milestones[last]), last, msgMilestoneBeforeAdd)
	}
	f.message = ""
	f.draft.addMilestone()
	return ok()
}

// RemoveMilestone is a no-op when only one milestone remains.
func (f *Form) RemoveMilestone(index int) bool { return f.draft.removeMilestone(index) }

// MoveMilestoneUp is a no-op for the first milestone.
func (f *Form) MoveMilestoneUp(index int) bool {
	if index <= 0 {
		return false
	}
	return f.draft.swapMilestones(index, index-1)
}

// MoveMilestoneDown is a no-op for the last milestone.
func (f *Form) MoveMilestoneDown(index int) bool {
	if index >= len(f.draft.Milestones)-1 {
		return false
	}
	return f.draft.swapMilestones(index, index+1)
}

func (f *Form) milestone(index int) (*paths.Milestone, bool) {
	if index < 0 || index >= len(f.draft.Milestones) {
		return nil, false
	}
	return &f.draft.Milestones[index], true
}

func (f *Form) SetMilestoneTitle(index int, title string) bool {
	m, found := f.milestone(index)
	if found {
		m.Title = title
	}
	return found
}

func (f *Form) SetMilestoneDescription(index int, description string) bool {
	m, found := f.milestone(index)
	if found {
		m.Description = description
	}
	return found
}

func (f *Form) SetMilestoneTips(index int, tips string) bool {
	m, found := f.milestone(index)
	if found {
		m.Tips = tips
	}
	return found
}

func (f *Form) SetMilestoneEstimatedDays(index, days int) Outcome {
	m, found := f.milestone(index)
	if !found {
		return failMilestone(FieldMilestoneDays, index, "No such milestone")
	}
	if days < 1 {
		return failMilestone(FieldMilestoneDays, index, "Estimated days must be at least 1")
	}
	m.EstimatedDays = days
	return ok()
}

// AddResource appends a trimmed resource. Blank input is ignored.
func (f *Form) AddResource(index int, resource string) bool {
	m, found := f.milestone(index)
	resource = strings.TrimSpace(resource)
	if !found || resource == "" {
		return false
	}
	m.Resources = append(m.Resources, resource)
	return true
}

func (f *Form) RemoveResource(index, resourceIndex int) bool {
	m, found := f.milestone(index)
	if !found || resourceIndex < 0 || resourceIndex >= len(m.Resources) {
		return false
	}
	m.Resources = append(m.Resources[:resourceIndex], m.Resources[resourceIndex+1:]...)
	return true
}

// Next advances one step if the current step's guard passes.
func (f *Form) Next() Outcome {
	switch f.step {
	case StepBasic:
		if strings.TrimSpace(f.draft.Title) == "" {
			f.message = msgTitleMissing
			return fail(FieldTitle, msgTitleMissing)
		}
		if strings.TrimSpace(f.draft.Description) == "" {
			f.message = msgDescriptionMissing
			return fail(FieldDescription, msgDescriptionMissing)
		}
		f.message = ""
		f.step = StepMilestones
		return ok()

	case StepMilestones:
		if i := f.draft.FirstIncompleteMilestone(); i >= 0 {
			f.message = msgMilestoneBeforeView
			return failMilestone(missingMilestoneField(f.draft.Milestones[i]), i, msgMilestoneBeforeView)
		}
		f.message = ""
		f.step = StepPreview
		return ok()

	default:
		return fail("", fmt.Sprintf("cannot advance from %s", f.step))
	}
}

// Back returns to the previous step. It never fails before submission.
func (f *Form) Back() bool {
	switch f.step {
	case StepMilestones:
		f.step = StepBasic
	case StepPreview:
		f.step = StepMilestones
	default:
		return false
	}
	f.message = ""
	return true
}

// GoTo jumps to target, running every forward guard in between.
func (f *Form) GoTo(target Step) Outcome {
	order := map[Step]int{StepBasic: 0, StepMilestones: 1, StepPreview: 2}
	to, known := order[target]
	if !known || f.step == StepSubmitted {
		return fail("", fmt.Sprintf("cannot go to %s", target))
	}
	for order[f.step] > to {
		f.Back()
	}
	for order[f.step] < to {
		if out := f.Next(); !out.OK {
			return out
		}
	}
	return ok()
}

// Payload validates the whole draft and builds the create request.
func (f *Form) Payload() (paths.CreateRequest, Outcome) {
	d := f.draft
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Description) == "" {
		field := FieldTitle
		if strings.TrimSpace(d.Title) != "" {
			field = FieldDescription
		}
		f.message = msgRequired
		return paths.CreateRequest{}, fail(field, msgRequired)
	}
	if out := f.setFormatError(FieldTitle, d.Title, msgTitleNumeric); !out.OK {
		f.message = msgCorrectErrors
		out.Message = msgCorrectErrors
		return paths.CreateRequest{}, out
	}
	if out := f.setFormatError(FieldDescription, d.Description, msgDescriptionNumeric); !out.OK {
		f.message = msgCorrectErrors
		out.Message = msgCorrectErrors
		return paths.CreateRequest{}, out
	}
	if i := d.FirstIncompleteMilestone(); i >= 0 {
		f.message = msgMilestonesRequired
		return paths.CreateRequest{}, failMilestone(missingMilestoneField(d.Milestones[i]), i, msgMilestonesRequired)
	}

	user, loggedIn := f.identity.CurrentUser()
	if !loggedIn || user.ID == "" {
		f.message = msgNotLoggedIn
		out := fail(FieldUser, msgNotLoggedIn)
		out.Cause = &apperrors.AuthenticationError{Reason: "no current user", Cause: apperrors.ErrNoSession}
		return paths.CreateRequest{}, out
	}

	snapshot := d.Clone()
	snapshot.renumber()
	return paths.CreateRequest{
		Title:        snapshot.Title,
		Description:  snapshot.Description,
		Requirements: snapshot.Requirements,
		Difficulty:   snapshot.Difficulty,
		DurationDays: snapshot.DurationDays,
		Tags:         snapshot.Tags,
		Tips:         snapshot.Tips,
		Milestones:   snapshot.Milestones,
		IsPublic:     true,
		UserID:       user.ID,
	}, ok()
}

// Submit validates the draft and dispatches it. On failure the draft is kept
// so the user can retry.
func (f *Form) Submit(ctx context.Context) (string, Outcome) {
	if f.step == StepSubmitted {
		return f.createdID, ok()
	}

	req, out := f.Payload()
	if !out.OK {
		return "", out
	}

	id, err := f.creator.Create(ctx, req)
	if err != nil {
		log.Err(err).Str("title", req.Title).Msg("Failed to create learning path")
		f.message = msgCreateFailed
		failed := fail("", msgCreateFailed)
		failed.Cause = err
		return "", failed
	}

	f.message = ""
	f.createdID = id
	f.step = StepSubmitted
	return id, ok()
}

func missingMilestoneField(m paths.Milestone) string {
	if strings.TrimSpace(m.Title) == "" {
		return FieldMilestoneTitle
	}
	return FieldMilestoneDescription
}
