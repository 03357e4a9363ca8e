package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/paths/authoring"
	"github.com/jrsteele09/learnpath-client/posts"
	"github.com/jrsteele09/learnpath-client/services/comment"
	"github.com/jrsteele09/learnpath-client/services/progress"
	"github.com/jrsteele09/learnpath-client/shell"
)

// Styles used by every rendered view.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Tag      lipgloss.Style
	Active   lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Tag:      lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		Active:   lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("42")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

var styles = DefaultStyles()

func label(name, value string) string {
	return styles.Muted.Render(name+": ") + styles.Subtitle.Render(value)
}

func renderTags(tags []string) string {
	if len(tags) == 0 {
		return styles.Muted.Render("no tags")
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = styles.Tag.Render("#" + t)
	}
	return strings.Join(out, " ")
}

func renderMilestones(b *strings.Builder, milestones []paths.Milestone) {
	for _, m := range milestones {
		fmt.Fprintf(b, "\n%s %s %s\n", styles.Title.Render(fmt.Sprintf("%d.", m.OrderIndex+1)), m.Title,
			styles.Muted.Render(fmt.Sprintf("(%d days)", m.EstimatedDays)))
		if m.Description != "" {
			b.WriteString("   " + m.Description + "\n")
		}
		for _, r := range m.Resources {
			b.WriteString("   " + styles.Muted.Render("- "+r) + "\n")
		}
		if m.Tips != "" {
			b.WriteString("   " + label("Tip", m.Tips) + "\n")
		}
	}
}

// RenderDraft is the preview step of the authoring wizard.
func RenderDraft(d authoring.Draft) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(d.Title) + "\n")
	b.WriteString(d.Description + "\n\n")
	b.WriteString(label("Difficulty", string(d.Difficulty)) + "   ")
	b.WriteString(label("Duration", fmt.Sprintf("%d days (~%d weeks)", d.DurationDays, d.DurationWeeks())) + "\n")
	if d.Requirements != "" {
		b.WriteString(label("Requirements", d.Requirements) + "\n")
	}
	b.WriteString(renderTags(d.Tags) + "\n")
	renderMilestones(&b, d.Milestones)
	if d.Tips != "" {
		b.WriteString("\n" + label("Tips", d.Tips) + "\n")
	}
	return styles.Border.Render(strings.TrimRight(b.String(), "\n"))
}

func RenderPath(p paths.LearningPath) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(p.Title) + " " + styles.Muted.Render(p.ID) + "\n")
	b.WriteString(p.Description + "\n\n")
	b.WriteString(label("Difficulty", string(p.Difficulty)) + "   ")
	b.WriteString(label("Duration", fmt.Sprintf("%d days", p.DurationDays)) + "\n")
	b.WriteString(renderTags(p.Tags) + "\n")
	renderMilestones(&b, p.Milestones)
	return styles.Border.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderProgress shows one progress record, with its path when enriched.
func RenderProgress(p progress.Progress) string {
	title := p.LearningPathID
	if p.LearningPath.Title != "" {
		title = p.LearningPath.Title
	}
	status := fmt.Sprintf("%.0f%%", p.Percentage)
	if p.IsComplete {
		status += " complete"
	}
	line := fmt.Sprintf("%s  %s  %s", styles.Muted.Render(p.ID), styles.Title.Render(title), styles.Subtitle.Render(status))
	if len(p.CompletedMilestones) > 0 {
		line += styles.Muted.Render(fmt.Sprintf("  %d milestones done", len(p.CompletedMilestones)))
	}
	if p.Likes > 0 {
		line += styles.Muted.Render(fmt.Sprintf("  %d likes", p.Likes))
	}
	if len(p.Badges) > 0 {
		line += "  " + renderTags(p.Badges)
	}
	return line
}

func RenderPost(p posts.Post) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(p.Title) + " " + styles.Muted.Render(p.ID) + "\n")
	b.WriteString(p.Content + "\n")
	for _, ref := range p.MediaURLs {
		if len(ref) > 60 {
			ref = ref[:57] + "..."
		}
		b.WriteString(styles.Muted.Render("media: "+ref) + "\n")
	}
	b.WriteString(renderTags(p.Tags))
	if p.Likes > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  %d likes", p.Likes)))
	}
	return styles.Border.Render(b.String())
}

// RenderComment shows one comment, indented when it is a reply.
func RenderComment(c comment.Comment) string {
	indent := ""
	if c.ParentCommentID != "" {
		indent = "  > "
	}
	line := indent + styles.Muted.Render(c.ID) + "  " + c.Content
	if c.Likes > 0 {
		line += styles.Muted.Render(fmt.Sprintf("  (%d likes)", c.Likes))
	}
	return line
}

// RenderNavbar draws the navigation shell as a single bar.
func RenderNavbar(n *shell.Navbar) string {
	items := make([]string, 0, 8)
	for _, item := range n.PrimaryLinks() {
		if item.Link == n.Active() {
			items = append(items, styles.Active.Render(item.Label))
			continue
		}
		items = append(items, item.Label)
	}
	account := make([]string, 0, 4)
	for _, item := range n.AccountLinks() {
		account = append(account, styles.Muted.Render(item.Label))
	}
	right := strings.Join(account, " | ")
	if user, ok := n.User(); ok {
		right = styles.Title.Render("["+user.Initial()+"] "+n.UserLabel()) + "  " + right
	}
	return styles.Border.Render(strings.Join(items, "  ") + "    " + right)
}

// RenderError formats a failure message for the terminal.
func RenderError(message string) string {
	return styles.Error.Render(message)
}
