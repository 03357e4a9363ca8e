package authoring

import (
	"strings"

	"github.com/jrsteele09/learnpath-client/paths"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultDurationDays  = 30
	DefaultEstimatedDays = 1
)

// Draft is the in-memory learning path being authored. Milestones[i].OrderIndex
// always equals i and there is always at least one milestone.
type Draft struct {
	Title        string
	Description  string
	Requirements string
	Difficulty   paths.Difficulty
	DurationDays int
	Tags         []string
	Tips         string
	Milestones   []paths.Milestone
}

// NewDraft returns an empty draft holding one blank milestone.
func NewDraft() Draft {
	return Draft{
		Difficulty:   paths.Beginner,
		DurationDays: DefaultDurationDays,
		Tags:         []string{},
		Milestones:   []paths.Milestone{blankMilestone(0)},
	}
}

func blankMilestone(index int) paths.Milestone {
	return paths.Milestone{
		OrderIndex:    index,
		EstimatedDays: DefaultEstimatedDays,
		Resources:     []string{},
	}
}

// Clone deep copies the draft.
func (d Draft) Clone() Draft {
	out := d
	out.Tags = append([]string{}, d.Tags...)
	out.Milestones = make([]paths.Milestone, len(d.Milestones))
	for i, m := range d.Milestones {
		m.Resources = append([]string{}, m.Resources...)
		out.Milestones[i] = m
	}
	return out
}

// DurationWeeks is the duration rounded to whole weeks, as shown in previews.
func (d Draft) DurationWeeks() int {
	return (d.DurationDays + 3) / 7
}

func milestoneComplete(m paths.Milestone) bool {
	return strings.TrimSpace(m.Title) != "" && strings.TrimSpace(m.Description) != ""
}

// FirstIncompleteMilestone returns the index of the first milestone missing a
// title or description, or -1.
func (d Draft) FirstIncompleteMilestone() int {
	for i, m := range d.Milestones {
		if !milestoneComplete(m) {
			return i
		}
	}
	return -1
}

func (d *Draft) renumber() {
	for i := range d.Milestones {
		d.Milestones[i].OrderIndex = i
	}
}

func (d *Draft) addMilestone() {
	d.Milestones = append(d.Milestones, blankMilestone(len(d.Milestones)))
}

func (d *Draft) removeMilestone(index int) bool {
	if len(d.Milestones) <= 1 || index < 0 || index >= len(d.Milestones) {
		return false
	}
	d.Milestones = append(d.Milestones[:index], d.Milestones[index+1:]...)
	d.renumber()
	return true
}

func (d *Draft) swapMilestones(i, j int) bool {
	if i < 0 || j < 0 || i >= len(d.Milestones) || j >= len(d.Milestones) {
		return false
	}
	d.Milestones[i], d.Milestones[j] = d.Milestones[j], d.Milestones[i]
	d.renumber()
	return true
}

// normalizeTag trims and NFC-normalizes a tag. Case is preserved.
func normalizeTag(tag string) string {
	return norm.NFC.String(strings.TrimSpace(tag))
}

func (d *Draft) addTag(tag string) bool {
	tag = normalizeTag(tag)
	if tag == "" {
		return false
	}
	for _, existing := range d.Tags {
		if existing == tag {
			return false
		}
	}
	d.Tags = append(d.Tags, tag)
	return true
}

func (d *Draft) removeTag(index int) bool {
	if index < 0 || index >= len(d.Tags) {
		return false
	}
	d.Tags = append(d.Tags[:index], d.Tags[index+1:]...)
	return true
}
