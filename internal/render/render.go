// Package render formats pipeline results for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"startiq/internal/core"
	"startiq/internal/services"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).Padding(0, 1)
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StartupInsight writes a startup analysis with its red flags.
func StartupInsight(w io.Writer, r *services.StartupInsightResult) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Startup "+r.StartupID) + " " + cacheBadge(r.Cached, r.CreatedAt) + "\n\n")
	b.WriteString(boxStyle.Render(strings.TrimSpace(r.Insights)) + "\n\n")
	writeList(&b, "Red flags", r.RedFlags, redStyle)
	_, err := io.WriteString(w, b.String())
	return err
}

// InvestorInsight writes an investor analysis.
func InvestorInsight(w io.Writer, r *services.InvestorInsightResult) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Investor "+r.InvestorID) + " " + cacheBadge(r.Cached, r.CreatedAt) + "\n\n")
	b.WriteString(boxStyle.Render(strings.TrimSpace(r.Insights)) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// DealNote writes a deal note with its verdict, highlights, fit and risks.
func DealNote(w io.Writer, r *services.DealNoteResult) error {
	var b strings.Builder
	note := r.DealNote
	b.WriteString(titleStyle.Render(fmt.Sprintf("Deal note %s → %s", r.InvestorID, r.StartupID)))
	b.WriteString(" " + cacheBadge(r.Cached, note.CreatedAt) + "\n\n")
	b.WriteString(labelStyle.Render("Verdict: ") + verdictStyle(note.Note).Render(note.Note) + "\n\n")
	writeList(&b, "Highlights", note.Highlights, greenStyle)
	writeList(&b, "Fit", note.Fit, lipgloss.NewStyle())
	writeList(&b, "Risks", note.Risks, redStyle)
	_, err := io.WriteString(w, b.String())
	return err
}

// Score writes a startup score with the flags it was computed from.
func Score(w io.Writer, r *services.ScoreResult) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Score "+r.StartupID) + "\n\n")

	score := core.NotAvailable
	if r.Score != nil {
		score = fmt.Sprintf("%d/100", *r.Score)
	}
	b.WriteString(labelStyle.Render("AI Score: ") + score + "\n\n")
	writeList(&b, "Green flags", r.GreenFlags, greenStyle)
	writeList(&b, "Red flags", r.RedFlags, redStyle)
	_, err := io.WriteString(w, b.String())
	return err
}

// Registration writes the outcome of a user registration.
func Registration(w io.Writer, r *services.RegisterResult) error {
	_, err := fmt.Fprintf(w, "%s %s\n", greenStyle.Render("✓"), r.Message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("uid=%s role=%s collection=%s", r.UID, r.Role, r.Collection)))
	return err
}

func writeList(b *strings.Builder, label string, items []string, style lipgloss.Style) {
	b.WriteString(labelStyle.Render(label) + "\n")
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("  none") + "\n\n")
		return
	}
	for _, item := range items {
		b.WriteString("  • " + style.Render(item) + "\n")
	}
	b.WriteString("\n")
}

func cacheBadge(cached bool, createdAt time.Time) string {
	if !cached {
		return mutedStyle.Render("(generated)")
	}
	return mutedStyle.Render("(cached " + createdAt.UTC().Format("2006-01-02 15:04") + ")")
}

func verdictStyle(verdict string) lipgloss.Style {
	switch verdict {
	case core.VerdictInvest:
		return greenStyle.Bold(true)
	case core.VerdictDoNotInvest:
		return redStyle.Bold(true)
	default:
		return lipgloss.NewStyle().Bold(true)
	}
}
