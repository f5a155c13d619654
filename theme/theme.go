package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-automate/automation"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Keyframe markers by segment type
	KeyStep   rune // ■
	KeyLinear rune // ◆
	KeyBezier rune // ●
	Selected  rune // ◉ selected keyframe of any type

	// Lane
	Curve      rune // • sampled value
	Hold       rune // · value held past the block end
	BlockStart rune // ┃ block boundary
	Instance   rune // ┆ boundary of an instance block
	Cursor     rune // ▼ cursor column marker
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			KeyStep:   '■',
			KeyLinear: '◆',
			KeyBezier: '●',
			Selected:  '◉',

			Curve:      '•',
			Hold:       '·',
			BlockStart: '┃',
			Instance:   '┆',
			Cursor:     '▼',
		},
	}
}

// KeySymbol is the lane marker for a keyframe of type typ.
func (t *Theme) KeySymbol(typ automation.CurveType, selected bool) rune {
	if selected {
		return t.Symbols.Selected
	}
	switch typ {
	case automation.Linear:
		return t.Symbols.KeyLinear
	case automation.Bezier:
		return t.Symbols.KeyBezier
	}
	return t.Symbols.KeyStep
}

// KeyColor is the legend color for a keyframe type.
func (t *Theme) KeyColor(typ automation.CurveType) RGB {
	switch typ {
	case automation.Linear:
		return t.Palette.Lookup(RoleActive)
	case automation.Bezier:
		return t.Palette.Lookup(RoleAccent)
	}
	return t.Palette.Lookup(RoleMuted)
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
