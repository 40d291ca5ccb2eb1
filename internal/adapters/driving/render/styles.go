package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// Theme defines the colour palette for terminal output.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	// Title style for section headings.
	Title lipgloss.Style

	// Ref style for reference tokens.
	Ref lipgloss.Style

	// Normal style for body text.
	Normal lipgloss.Style

	// Muted style for placeholders and sizes.
	Muted lipgloss.Style

	// Error style for failed answers.
	Error lipgloss.Style

	// Answer style for the boxed answer text.
	Answer lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),
		Ref: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),
		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error),
		Answer: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// Terminal renders a result for an interactive terminal.
// Failed results show only the error line.
func (s *Styles) Terminal(result domain.AnswerResult) string {
	if !result.OK() {
		return s.Error.Render(result.Record.AnswerText) + "\n"
	}
	rec := result.Record

	var b strings.Builder
	b.WriteString(s.Title.Render(HeadingAnswer) + "\n")
	b.WriteString(s.Answer.Render(rec.AnswerText) + "\n\n")

	b.WriteString(s.Title.Render(HeadingTables) + "\n")
	if len(rec.Tables) == 0 {
		b.WriteString(s.Muted.Render(noTables) + "\n")
	}
	for _, ref := range SortedRefs(rec.Tables) {
		b.WriteString(s.Ref.Render(ref) + "\n")
		b.WriteString(s.Normal.Render(rec.Tables[ref]) + "\n\n")
	}
	b.WriteString("\n")

	b.WriteString(s.Title.Render(HeadingImages) + "\n")
	if len(rec.Images) == 0 {
		b.WriteString(s.Muted.Render(noImages) + "\n")
	}
	for _, ref := range SortedRefs(rec.Images) {
		b.WriteString(s.Ref.Render(ref) + " " + s.Muted.Render(sizeLabel(rec.Images[ref])) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(s.Title.Render(HeadingDocuments) + "\n")
	if len(rec.RetrievedChunks) == 0 {
		b.WriteString(s.Muted.Render(noDocuments) + "\n")
	}
	for i, c := range rec.RetrievedChunks {
		b.WriteString(s.Muted.Render(fmt.Sprintf("Doc %d (%s, score %.3f)", i+1, c.Metadata.Source, c.Score)) + "\n")
		b.WriteString(s.Normal.Render(c.Content) + "\n\n")
	}
	return b.String()
}
