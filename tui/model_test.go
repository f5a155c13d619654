package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-automate/config"
	"go-automate/editor"
	"go-automate/theme"
	"go-automate/timeline"
)

func newModel() Model {
	ed := editor.New(nil, 0)
	ed.Timeline.AddTrack(timeline.NewTrack("Cutoff", 1, 74))
	ed.Timeline.AddTrack(timeline.NewTrack("Pan", 1, 10))
	return NewModel(ed, config.DefaultConfig(), theme.New(nil), "")
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestAddBlockAndKeys(t *testing.T) {
	m := newModel()
	m = press(t, m, "a")
	if m.status == "" {
		t.Error("adding a key without a block should report")
	}

	m = press(t, m, "n", "a", "l", "l", "a")
	b := m.Editor.Timeline.Tracks[0].Blocks()
	if len(b) != 1 {
		t.Fatalf("blocks = %d", len(b))
	}
	c := b[0].Primary()
	if c.Len() != 2 {
		t.Fatalf("keys = %d", c.Len())
	}
	if k, _ := c.KeyAt(24); k.Value != 64 {
		t.Errorf("KeyAt(24) = %+v", k)
	}

	m = press(t, m, "+", "+")
	if k, _ := c.KeyAt(24); k.Value != 66 {
		t.Errorf("after nudge KeyAt(24) = %+v", k)
	}
	m = press(t, m, "z", "z")
	if k, _ := c.KeyAt(24); k.Value != 64 {
		t.Errorf("after undo KeyAt(24) = %+v", k)
	}
	if !strings.HasPrefix(m.status, "undo") {
		t.Errorf("status = %q", m.status)
	}
}

func TestSecondaryStreamAndSplit(t *testing.T) {
	m := newModel()
	m = press(t, m, "n", "tab", "a", "l", "l", "l", "l", "a")
	b := m.Editor.Timeline.Tracks[0].Blocks()[0]
	if b.Secondary().Len() != 2 || b.Primary().Len() != 0 {
		t.Fatalf("primary %d secondary %d", b.Primary().Len(), b.Secondary().Len())
	}
	m = press(t, m, "h", "h", "s")
	if got := m.Editor.Timeline.Tracks[0].Len(); got != 2 {
		t.Errorf("blocks after split = %d (status %q)", got, m.status)
	}
}

func TestViewRendersLanes(t *testing.T) {
	m := newModel()
	m = press(t, m, "n", "a", "j")
	out := m.View()
	for _, want := range []string{"Cutoff", "Pan", "◉", "go-automate"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	m = press(t, m, "?")
	if !strings.Contains(m.View(), "make unique") {
		t.Error("help not shown")
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || next.(Model).View() != "" {
		t.Error("q did not quit")
	}
}

func TestStatusKinds(t *testing.T) {
	m := newModel()
	m = press(t, m, "s")
	if m.kind != statusError || m.status == "" {
		t.Errorf("split without a block: kind %d status %q", m.kind, m.status)
	}
	m = press(t, m, "h")
	if m.kind != statusInfo || m.status != "" {
		t.Errorf("status not cleared: %d %q", m.kind, m.status)
	}
}

func TestHelpLegend(t *testing.T) {
	m := press(t, newModel(), "?")
	out := m.View()
	for _, want := range []string{"Curve types", "■ step", "◆ linear", "● bezier", "tangent handles"} {
		if !strings.Contains(out, want) {
			t.Errorf("legend missing %q", want)
		}
	}
}
