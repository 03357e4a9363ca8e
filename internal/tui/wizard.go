package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/paths/authoring"
)

// ErrCancelled is returned when the user abandons the wizard.
var ErrCancelled = errors.New("authoring cancelled")

const (
	actionEdit   = "Edit again"
	actionNext   = "Next milestone"
	actionAdd    = "Add milestone"
	actionRemove = "Remove milestone"
	actionUp     = "Move up"
	actionDown   = "Move down"
	actionDone   = "Done with milestones"

	actionSubmit = "Submit"
	actionBack   = "Back"
	actionCancel = "Cancel"
)

// Wizard walks an authoring form through its steps with huh prompts.
type Wizard struct {
	form *authoring.Form
	out  io.Writer
}

func NewWizard(form *authoring.Form, out io.Writer) *Wizard {
	return &Wizard{form: form, out: out}
}

func outcomeErr(o authoring.Outcome) error {
	if o.OK {
		return nil
	}
	return errors.New(o.Message)
}

func (w *Wizard) report(o authoring.Outcome) {
	if o.OK {
		return
	}
	where := o.Field
	if o.MilestoneIndex != authoring.NoMilestone {
		where = fmt.Sprintf("%s (milestone %d)", o.Field, o.MilestoneIndex+1)
	}
	fmt.Fprintln(w.out, RenderError(o.Message)+" "+styles.Muted.Render(where))
}

// Run drives the form until it is submitted or cancelled and returns the id
// of the created learning path.
func (w *Wizard) Run(ctx context.Context) (string, error) {
	for {
		var err error
		switch w.form.Step() {
		case authoring.StepBasic:
			err = w.basic(ctx)
		case authoring.StepMilestones:
			err = w.milestones(ctx)
		case authoring.StepPreview:
			err = w.preview(ctx)
		case authoring.StepSubmitted:
			return w.form.CreatedID(), nil
		}
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, ErrCancelled) {
			w.form.Cancel()
			return "", ErrCancelled
		}
		if err != nil {
			return "", err
		}
	}
}

func (w *Wizard) basic(ctx context.Context) error {
	d := w.form.Draft()
	title, description := d.Title, d.Description
	difficulty := d.Difficulty
	duration := strconv.Itoa(d.DurationDays)
	tags := strings.Join(d.Tags, ", ")
	requirements, tips := d.Requirements, d.Tips

	difficulties := make([]huh.Option[paths.Difficulty], len(paths.Difficulties))
	for i, diff := range paths.Difficulties {
		difficulties[i] = huh.NewOption(string(diff), diff)
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(&title).
			Validate(func(s string) error { return outcomeErr(w.form.SetTitle(s)) }),
		huh.NewText().Title("Description").Value(&description).
			Validate(func(s string) error { return outcomeErr(w.form.SetDescription(s)) }),
		huh.NewSelect[paths.Difficulty]().Title("Difficulty").Options(difficulties...).Value(&difficulty),
		huh.NewInput().Title("Duration (days)").Value(&duration).
			Validate(func(s string) error {
				days, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil {
					return errors.New("Duration must be a whole number of days")
				}
				return outcomeErr(w.form.SetDuration(days))
			}),
		huh.NewInput().Title("Tags").Description("Comma separated").Value(&tags),
		huh.NewText().Title("Requirements").Value(&requirements),
		huh.NewText().Title("Tips").Value(&tips),
	).Title("Basic information"))
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	w.form.SetTitle(title)
	w.form.SetDescription(description)
	w.form.SetDifficulty(difficulty)
	w.form.SetRequirements(requirements)
	w.form.SetTips(tips)
	for len(w.form.Draft().Tags) > 0 {
		w.form.RemoveTag(0)
	}
	for _, tag := range strings.Split(tags, ",") {
		w.form.AddTag(tag)
	}

	w.report(w.form.Next())
	return nil
}

func (w *Wizard) milestone(ctx context.Context, index int) error {
	m := w.form.Draft().Milestones[index]
	title, description, tips := m.Title, m.Description, m.Tips
	days := strconv.Itoa(m.EstimatedDays)
	resources := strings.Join(m.Resources, "\n")

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(&title),
		huh.NewText().Title("Description").Value(&description),
		huh.NewInput().Title("Estimated days").Value(&days).
			Validate(func(s string) error {
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil {
					return errors.New("Estimated days must be a whole number")
				}
				return outcomeErr(w.form.SetMilestoneEstimatedDays(index, n))
			}),
		huh.NewText().Title("Resources").Description("One per line").Value(&resources),
		huh.NewInput().Title("Tips").Value(&tips),
	).Title(fmt.Sprintf("Milestone %d of %d", index+1, len(w.form.Draft().Milestones))))
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	w.form.SetMilestoneTitle(index, title)
	w.form.SetMilestoneDescription(index, description)
	w.form.SetMilestoneTips(index, tips)
	for len(w.form.Draft().Milestones[index].Resources) > 0 {
		w.form.RemoveResource(index, 0)
	}
	for _, r := range strings.Split(resources, "\n") {
		w.form.AddResource(index, r)
	}
	return nil
}

func (w *Wizard) milestones(ctx context.Context) error {
	index := 0
	for {
		if err := w.milestone(ctx, index); err != nil {
			return err
		}

		var action string
		choice := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What next?").
				Options(huh.NewOptions(actionNext, actionEdit, actionAdd, actionRemove, actionUp, actionDown, actionDone, actionBack)...).
				Value(&action),
		))
		if err := choice.RunWithContext(ctx); err != nil {
			return err
		}

		count := len(w.form.Draft().Milestones)
		switch action {
		case actionNext:
			index = (index + 1) % count
		case actionAdd:
			out := w.form.AddMilestone()
			w.report(out)
			if out.OK {
				index = count
			}
		case actionRemove:
			if !w.form.RemoveMilestone(index) {
				fmt.Fprintln(w.out, RenderError("A learning path needs at least one milestone"))
			}
			index = min(index, len(w.form.Draft().Milestones)-1)
		case actionUp:
			if w.form.MoveMilestoneUp(index) {
				index--
			}
		case actionDown:
			if w.form.MoveMilestoneDown(index) {
				index++
			}
		case actionBack:
			w.form.Back()
			return nil
		case actionDone:
			out := w.form.Next()
			w.report(out)
			if out.OK {
				return nil
			}
			if out.MilestoneIndex != authoring.NoMilestone {
				index = out.MilestoneIndex
			}
		}
	}
}

func (w *Wizard) preview(ctx context.Context) error {
	fmt.Fprintln(w.out, RenderDraft(w.form.Draft()))

	var action string
	choice := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Create this learning path?").
			Options(huh.NewOptions(actionSubmit, actionBack, actionCancel)...).
			Value(&action),
	))
	if err := choice.RunWithContext(ctx); err != nil {
		return err
	}

	switch action {
	case actionBack:
		w.form.Back()
	case actionCancel:
		return ErrCancelled
	case actionSubmit:
		if _, out := w.form.Submit(ctx); !out.OK {
			w.report(out)
			if target := stepFor(out.Field); target != authoring.StepPreview {
				w.form.GoTo(target)
			}
		}
	}
	return nil
}

// stepFor is the step holding the input a failed submit points at.
func stepFor(field string) authoring.Step {
	switch field {
	case authoring.FieldTitle, authoring.FieldDescription, authoring.FieldDifficulty, authoring.FieldDuration:
		return authoring.StepBasic
	case authoring.FieldMilestoneTitle, authoring.FieldMilestoneDescription, authoring.FieldMilestoneDays:
		return authoring.StepMilestones
	default:
		return authoring.StepPreview
	}
}
