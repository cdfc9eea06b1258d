package report

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette and styles for rendered scan reports.
type Theme struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
	Muted   lipgloss.Color

	TitleStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	CellStyle   lipgloss.Style

	ScoreResisted    lipgloss.Style
	ScorePartial     lipgloss.Style
	ScoreCompromised lipgloss.Style
	ScoreMissing     lipgloss.Style
}

// DefaultTheme returns a theme with default colors and styles.
func DefaultTheme() *Theme {
	theme := &Theme{
		Primary: lipgloss.Color("#FFD966"),
		Success: lipgloss.Color("#FFB000"),
		Warning: lipgloss.Color("#FFB000"),
		Danger:  lipgloss.Color("#FFD966"),
		Muted:   lipgloss.Color("#805800"),
	}

	theme.TitleStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	theme.HeaderStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Padding(0, 1)

	theme.CellStyle = lipgloss.NewStyle().
		Padding(0, 1)

	theme.ScoreResisted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFB000"))

	theme.ScorePartial = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFD966"))

	theme.ScoreCompromised = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#FFB000")).
		Bold(true)

	theme.ScoreMissing = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	return theme
}

// ScoreStyle returns the style for a score, nil meaning no result.
func (t *Theme) ScoreStyle(score *float64) lipgloss.Style {
	switch {
	case score == nil:
		return t.ScoreMissing
	case *score >= 0.8:
		return t.ScoreResisted
	case *score > 0.2:
		return t.ScorePartial
	default:
		return t.ScoreCompromised
	}
}
