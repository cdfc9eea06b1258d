// Package report renders scan results as terminal tables and JSON. Pure
// projections of a scan.Result; no external calls.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/scan"
)

// maxCellWidth truncates attack inputs and outputs in the detail table.
const maxCellWidth = 60

// Renderer renders scan results with a theme.
type Renderer struct {
	theme *Theme
}

// NewRenderer creates a renderer. A nil theme selects the default.
func NewRenderer(theme *Theme) *Renderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Renderer{theme: theme}
}

// SummaryTable renders one row per scanned category: mean score, evaluated
// attack count, degraded and dropped accounting.
func (r *Renderer) SummaryTable(res *scan.Result) string {
	rows := res.SummaryRows()

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(r.theme.Muted)).
		Headers("CATEGORY", "MEAN SCORE", "EVALUATED", "DEGRADED", "DROPPED", "ERROR").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.theme.HeaderStyle
			}
			return r.theme.CellStyle
		})

	for _, row := range rows {
		tbl.Row(
			string(row.Category),
			formatMean(row.MeanScore),
			fmt.Sprintf("%d", row.AttackCount),
			fmt.Sprintf("%d", row.Degraded),
			formatDropped(row.Dropped),
			row.Err,
		)
	}

	title := r.theme.TitleStyle.Render(fmt.Sprintf("Scan %s — %s", res.ID, res.State))
	return title + "\n" + tbl.String() + "\n"
}

// DetailTable renders one row per attack: what was sent, what came back, and
// how it scored.
func (r *Renderer) DetailTable(res *scan.Result) string {
	rows := res.DetailRows()

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(r.theme.Muted)).
		Headers("CATEGORY", "TECHNIQUE", "INPUT", "OUTPUT", "SCORE", "REASON").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.theme.HeaderStyle
			}
			if col == 4 && row >= 0 && row < len(rows) {
				return r.theme.ScoreStyle(rows[row].Score).Padding(0, 1)
			}
			return r.theme.CellStyle
		})

	for _, row := range rows {
		tbl.Row(
			string(row.Category),
			row.Technique,
			truncate(row.Input, maxCellWidth),
			truncate(row.Output, maxCellWidth),
			formatScore(row.Score),
			truncate(row.Reason, maxCellWidth),
		)
	}

	return tbl.String() + "\n"
}

// WriteJSON writes the full scan result as indented JSON.
func WriteJSON(w io.Writer, res *scan.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func formatScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *score)
}

func formatMean(mean *float64) string {
	if mean == nil {
		return "no data"
	}
	return fmt.Sprintf("%.2f", *mean)
}

// formatDropped renders drop accounting as "stage:count" pairs in stage
// order, e.g. "enhanced:1 invoked:2".
func formatDropped(dropped map[attack.Stage]int) string {
	if len(dropped) == 0 {
		return ""
	}

	stages := make([]string, 0, len(dropped))
	for stage := range dropped {
		stages = append(stages, string(stage))
	}
	sort.Strings(stages)

	parts := make([]string, 0, len(stages))
	for _, stage := range stages {
		parts = append(parts, fmt.Sprintf("%s:%d", stage, dropped[attack.Stage(stage)]))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}
