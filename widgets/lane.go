package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LaneColumn is what one screen column of a lane shows.
type LaneColumn struct {
	Value    float64
	HasValue bool
	Held     bool // past the last keyframe of its block
	Key      rune // keyframe marker, 0 for none
	Boundary rune // block boundary marker, 0 for none
	Selected bool // inside a selected block
}

// LaneStyle carries the colors a lane is drawn with.
type LaneStyle struct {
	Curve     lipgloss.Color
	Held      lipgloss.Color
	Key       lipgloss.Color
	Boundary  lipgloss.Color
	Selection lipgloss.Color
	Cursor    lipgloss.Color
	Label     lipgloss.Color

	CurveRune  rune
	HoldRune   rune
	CursorRune rune
}

// Lane is a value-over-time strip for one track.
type Lane struct {
	Title    string
	Height   int // rows of the value area
	Min, Max float64
	Columns  []LaneColumn
	Cursor   int // column index, -1 for none
	Focused  bool
	Style    LaneStyle
}

// Row maps v to a row of the value area, 0 at the top.
func (l Lane) Row(v float64) int {
	h := max(l.Height, 1)
	span := l.Max - l.Min
	if span <= 0 {
		return h - 1
	}
	norm := (v - l.Min) / span
	norm = math.Max(0, math.Min(1, norm))
	return h - 1 - int(math.Round(norm*float64(h-1)))
}

// RenderLane draws the title line, a cursor line and the value area.
func RenderLane(l Lane) string {
	h := max(l.Height, 1)
	grid := make([][]string, h)
	for r := range grid {
		grid[r] = make([]string, len(l.Columns))
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	curve := lipgloss.NewStyle().Foreground(l.Style.Curve)
	held := lipgloss.NewStyle().Foreground(l.Style.Held)
	key := lipgloss.NewStyle().Foreground(l.Style.Key).Bold(true)
	boundary := lipgloss.NewStyle().Foreground(l.Style.Boundary)
	selected := lipgloss.NewStyle().Background(l.Style.Selection)

	for c, col := range l.Columns {
		if col.Boundary != 0 {
			for r := range grid {
				grid[r][c] = boundary.Render(string(col.Boundary))
			}
		}
		if col.HasValue {
			r := l.Row(col.Value)
			switch {
			case col.Key != 0:
				grid[r][c] = key.Render(string(col.Key))
			case col.Held:
				grid[r][c] = held.Render(string(l.Style.HoldRune))
			default:
				grid[r][c] = curve.Render(string(l.Style.CurveRune))
			}
		}
		if col.Selected {
			for r := range grid {
				grid[r][c] = selected.Render(grid[r][c])
			}
		}
	}

	var out strings.Builder
	label := lipgloss.NewStyle().Foreground(l.Style.Label)
	if l.Focused {
		label = label.Bold(true)
	}
	out.WriteString(label.Render(l.Title))
	out.WriteString("\n")

	if l.Cursor >= 0 && l.Cursor < len(l.Columns) {
		out.WriteString(strings.Repeat(" ", l.Cursor))
		out.WriteString(lipgloss.NewStyle().Foreground(l.Style.Cursor).Render(string(l.Style.CursorRune)))
	}
	out.WriteString("\n")

	for r, row := range grid {
		out.WriteString(strings.Join(row, ""))
		if r < len(grid)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}
