package authoring_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/paths/authoring"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	requests []paths.CreateRequest
	id       string
	err      error
}

func (c *fakeCreator) Create(_ context.Context, req paths.CreateRequest) (string, error) {
	c.requests = append(c.requests, req)
	return c.id, c.err
}

type fakeIdentity struct {
	user users.User
}

func (i fakeIdentity) CurrentUser() (users.User, bool) {
	return i.user, !i.user.IsZero()
}

func newForm(t *testing.T) (*authoring.Form, *fakeCreator) {
	t.Helper()
	creator := &fakeCreator{id: "lp-1"}
	form, err := authoring.NewForm(creator, fakeIdentity{user: users.User{ID: "user-1"}})
	require.NoError(t, err)
	return form, creator
}

func fillBasic(form *authoring.Form) {
	form.SetTitle("Learning Go")
	form.SetDescription("From zero to services")
}

func requireDense(t *testing.T, d authoring.Draft) {
	t.Helper()
	require.NotEmpty(t, d.Milestones)
	for i, m := range d.Milestones {
		require.Equal(t, i, m.OrderIndex)
	}
}

func TestNewDraft(t *testing.T) {
	d := authoring.NewDraft()
	require.Len(t, d.Milestones, 1)
	require.Equal(t, 0, d.Milestones[0].OrderIndex)
	require.Equal(t, 1, d.Milestones[0].EstimatedDays)
	require.Equal(t, 30, d.DurationDays)
	require.Equal(t, paths.Beginner, d.Difficulty)
	require.Equal(t, 4, d.DurationWeeks())
}

func TestFieldValidation(t *testing.T) {
	tests := []struct {
		value   string
		invalid bool
	}{
		{"12345", true},
		{"  42 ", true},
		{"Path 1", false},
		{"", false},
		{"   ", false},
		{"1.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			form, _ := newForm(t)
			title := form.SetTitle(tt.value)
			desc := form.SetDescription(tt.value)
			assert.Equal(t, !tt.invalid, title.OK)
			assert.Equal(t, !tt.invalid, desc.OK)
			if tt.invalid {
				assert.Equal(t, "Title cannot contain only numbers", form.FieldError(authoring.FieldTitle))
				assert.Equal(t, "Description cannot contain only numbers", form.FieldError(authoring.FieldDescription))
			} else {
				assert.Empty(t, form.FieldError(authoring.FieldTitle))
			}
		})
	}
}

func TestNext_BasicGuard(t *testing.T) {
	form, _ := newForm(t)

	out := form.Next()
	require.False(t, out.OK)
	require.Equal(t, authoring.FieldTitle, out.Field)
	require.Equal(t, authoring.StepBasic, form.Step())

	form.SetTitle("Learning Go")
	out = form.Next()
	require.False(t, out.OK)
	require.Equal(t, authoring.FieldDescription, out.Field)

	form.SetDescription("Desc")
	require.True(t, form.Next().OK)
	require.Equal(t, authoring.StepMilestones, form.Step())
	require.Empty(t, form.Message())
}

func TestNext_MilestoneGuardReportsFirstOffender(t *testing.T) {
	form, _ := newForm(t)
	fillBasic(form)
	require.True(t, form.Next().OK)

	form.SetMilestoneTitle(0, "Basics")
	form.SetMilestoneDescription(0, "Syntax")
	require.True(t, form.AddMilestone().OK)
	form.SetMilestoneTitle(1, "Concurrency")

	out := form.Next()
	require.False(t, out.OK)
	require.Equal(t, 1, out.MilestoneIndex)
	require.Equal(t, authoring.FieldMilestoneDescription, out.Field)
	require.Equal(t, authoring.StepMilestones, form.Step())

	form.SetMilestoneDescription(1, "Goroutines")
	require.True(t, form.Next().OK)
	require.Equal(t, authoring.StepPreview, form.Step())

	require.True(t, form.Back())
	require.Equal(t, authoring.StepMilestones, form.Step())
	require.True(t, form.Back())
	require.Equal(t, authoring.StepBasic, form.Step())
	require.False(t, form.Back())
}

func TestGoTo(t *testing.T) {
	form, _ := newForm(t)

	out := form.GoTo(authoring.StepPreview)
	require.False(t, out.OK)
	require.Equal(t, authoring.StepBasic, form.Step())

	fillBasic(form)
	out = form.GoTo(authoring.StepPreview)
	require.False(t, out.OK)
	require.Equal(t, 0, out.MilestoneIndex)
	require.Equal(t, authoring.StepMilestones, form.Step())

	require.True(t, form.GoTo(authoring.StepBasic).OK)
	require.Equal(t, authoring.StepBasic, form.Step())
}

func TestAddMilestone_RejectedWhileLastIncomplete(t *testing.T) {
	form, _ := newForm(t)

	out := form.AddMilestone()
	require.False(t, out.OK)
	require.Equal(t, 0, out.MilestoneIndex)
	require.Equal(t, authoring.FieldMilestoneTitle, out.Field)
	require.Len(t, form.Draft().Milestones, 1)

	form.SetMilestoneTitle(0, "One")
	form.SetMilestoneDescription(0, "First")
	require.True(t, form.AddMilestone().OK)

	d := form.Draft()
	require.Len(t, d.Milestones, 2)
	require.Equal(t, 1, d.Milestones[1].OrderIndex)
	require.Equal(t, 1, d.Milestones[1].EstimatedDays)
}

func TestRemoveLastMilestoneIsNoop(t *testing.T) {
	form, _ := newForm(t)
	require.False(t, form.RemoveMilestone(0))
	require.Len(t, form.Draft().Milestones, 1)
}

func TestMoveBoundaries(t *testing.T) {
	form, _ := newForm(t)
	for i := 0; i < 3; i++ {
		form.SetMilestoneTitle(i, string(rune('A'+i)))
		form.SetMilestoneDescription(i, "d")
		if i < 2 {
			require.True(t, form.AddMilestone().OK)
		}
	}

	require.False(t, form.MoveMilestoneUp(0))
	require.False(t, form.MoveMilestoneDown(2))

	require.True(t, form.MoveMilestoneUp(2))
	d := form.Draft()
	require.Equal(t, []string{"A", "C", "B"}, titles(d))
	requireDense(t, d)

	require.True(t, form.MoveMilestoneDown(0))
	d = form.Draft()
	require.Equal(t, []string{"C", "A", "B"}, titles(d))
	requireDense(t, d)

	require.True(t, form.RemoveMilestone(1))
	d = form.Draft()
	require.Equal(t, []string{"C", "B"}, titles(d))
	requireDense(t, d)
}

func titles(d authoring.Draft) []string {
	out := make([]string, len(d.Milestones))
	for i, m := range d.Milestones {
		out[i] = m.Title
	}
	return out
}

func TestOrderIndexInvariant_RandomOperations(t *testing.T) {
	form, _ := newForm(t)
	rng := rand.New(rand.NewSource(7))

	for step := 0; step < 500; step++ {
		n := len(form.Draft().Milestones)
		idx := rng.Intn(n + 1)
		switch rng.Intn(4) {
		case 0:
			last := n - 1
			form.SetMilestoneTitle(last, "t")
			form.SetMilestoneDescription(last, "d")
			form.AddMilestone()
		case 1:
			form.RemoveMilestone(idx)
		case 2:
			form.MoveMilestoneUp(idx)
		case 3:
			form.MoveMilestoneDown(idx)
		}
		requireDense(t, form.Draft())
	}
}

func TestResources(t *testing.T) {
	form, _ := newForm(t)

	require.False(t, form.AddResource(0, "   "))
	require.True(t, form.AddResource(0, " https://go.dev/tour "))
	require.True(t, form.AddResource(0, "Effective Go"))
	require.False(t, form.AddResource(5, "x"))

	require.Equal(t, []string{"https://go.dev/tour", "Effective Go"}, form.Draft().Milestones[0].Resources)

	require.True(t, form.RemoveResource(0, 0))
	require.False(t, form.RemoveResource(0, 3))
	require.Equal(t, []string{"Effective Go"}, form.Draft().Milestones[0].Resources)
}

func TestTags(t *testing.T) {
	form, _ := newForm(t)

	require.True(t, form.AddTag(" go "))
	require.False(t, form.AddTag("go"))
	require.True(t, form.AddTag("Go"))
	require.False(t, form.AddTag("  "))
	// Composed and decomposed forms are the same tag
	require.True(t, form.AddTag("caf\u00e9"))
	require.False(t, form.AddTag("cafe\u0301"))

	require.Equal(t, []string{"go", "Go", "caf\u00e9"}, form.Draft().Tags)

	require.True(t, form.RemoveTag(0))
	require.False(t, form.RemoveTag(9))
	require.Equal(t, []string{"Go", "caf\u00e9"}, form.Draft().Tags)
}

func TestSettersValidate(t *testing.T) {
	form, _ := newForm(t)

	require.False(t, form.SetDuration(0).OK)
	require.True(t, form.SetDuration(14).OK)
	require.Equal(t, 2, form.Draft().DurationWeeks())

	require.False(t, form.SetDifficulty("Expert").OK)
	require.True(t, form.SetDifficulty(paths.Advanced).OK)

	require.False(t, form.SetMilestoneEstimatedDays(0, 0).OK)
	require.True(t, form.SetMilestoneEstimatedDays(0, 5).OK)
	require.Equal(t, 5, form.Draft().Milestones[0].EstimatedDays)
}

func TestDraftIsCopied(t *testing.T) {
	form, _ := newForm(t)
	form.AddResource(0, "r1")

	d := form.Draft()
	d.Milestones[0].Resources[0] = "mutated"
	d.Milestones[0].Title = "mutated"

	require.Equal(t, "r1", form.Draft().Milestones[0].Resources[0])
	require.Empty(t, form.Draft().Milestones[0].Title)
}

func TestSubmit_Payload(t *testing.T) {
	form, creator := newForm(t)
	fillBasic(form)
	form.AddTag("go")
	form.SetMilestoneTitle(0, "First")
	form.SetMilestoneDescription(0, "Start here")
	require.True(t, form.AddMilestone().OK)
	form.SetMilestoneTitle(1, "Second")
	form.SetMilestoneDescription(1, "Then this")

	id, out := form.Submit(context.Background())
	require.True(t, out.OK)
	require.Equal(t, "lp-1", id)
	require.Equal(t, authoring.StepSubmitted, form.Step())
	require.Equal(t, "lp-1", form.CreatedID())

	require.Len(t, creator.requests, 1)
	req := creator.requests[0]
	require.True(t, req.IsPublic)
	require.Equal(t, "user-1", req.UserID)
	require.Equal(t, 30, req.DurationDays)
	require.Equal(t, []string{"go"}, req.Tags)
	require.Equal(t, []string{"First", "Second"}, []string{req.Milestones[0].Title, req.Milestones[1].Title})
	require.Equal(t, 0, req.Milestones[0].OrderIndex)
	require.Equal(t, 1, req.Milestones[1].OrderIndex)

	// A second submit does not dispatch again
	id, out = form.Submit(context.Background())
	require.True(t, out.OK)
	require.Equal(t, "lp-1", id)
	require.Len(t, creator.requests, 1)
}

func TestSubmit_ValidationOrder(t *testing.T) {
	t.Run("missing title", func(t *testing.T) {
		form, creator := newForm(t)
		_, out := form.Submit(context.Background())
		require.False(t, out.OK)
		require.Equal(t, "Title and description are required", out.Message)
		require.Empty(t, creator.requests)

		var ve *apperrors.ValidationError
		require.ErrorAs(t, out.Err(), &ve)
	})

	t.Run("numeric title", func(t *testing.T) {
		form, creator := newForm(t)
		form.SetTitle("2024")
		form.SetDescription("Valid")
		_, out := form.Submit(context.Background())
		require.False(t, out.OK)
		require.Equal(t, authoring.FieldTitle, out.Field)
		require.Equal(t, "Please correct the errors before submitting", form.Message())
		require.Equal(t, "Title cannot contain only numbers", form.FieldError(authoring.FieldTitle))
		require.Empty(t, creator.requests)
	})

	t.Run("incomplete milestone", func(t *testing.T) {
		form, creator := newForm(t)
		fillBasic(form)
		_, out := form.Submit(context.Background())
		require.False(t, out.OK)
		require.Equal(t, "All milestones must have a title and description", out.Message)
		require.Equal(t, 0, out.MilestoneIndex)
		require.Empty(t, creator.requests)
	})

	t.Run("not logged in", func(t *testing.T) {
		creator := &fakeCreator{id: "lp-1"}
		form, err := authoring.NewForm(creator, fakeIdentity{})
		require.NoError(t, err)
		fillBasic(form)
		form.SetMilestoneTitle(0, "t")
		form.SetMilestoneDescription(0, "d")

		_, out := form.Submit(context.Background())
		require.False(t, out.OK)
		var authErr *apperrors.AuthenticationError
		require.ErrorAs(t, out.Err(), &authErr)
		require.Empty(t, creator.requests)
	})
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	form, creator := newForm(t)
	creator.err = errors.New("backend down")
	fillBasic(form)
	form.SetMilestoneTitle(0, "t")
	form.SetMilestoneDescription(0, "d")

	_, out := form.Submit(context.Background())
	require.False(t, out.OK)
	require.Equal(t, "Failed to create learning path. Please try again.", form.Message())
	require.ErrorIs(t, out.Err(), creator.err)
	require.Equal(t, "Learning Go", form.Draft().Title)
	require.NotEqual(t, authoring.StepSubmitted, form.Step())

	creator.err = nil
	id, out := form.Submit(context.Background())
	require.True(t, out.OK)
	require.Equal(t, "lp-1", id)
	require.Len(t, creator.requests, 2)
}

func TestCancel(t *testing.T) {
	form, _ := newForm(t)
	fillBasic(form)
	require.True(t, form.Next().OK)

	form.Cancel()
	require.Equal(t, authoring.StepBasic, form.Step())
	require.Empty(t, form.Draft().Title)
	require.Len(t, form.Draft().Milestones, 1)
}
