package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-automate/automation"
	"go-automate/command"
	"go-automate/config"
	"go-automate/debug"
	"go-automate/editor"
	"go-automate/project"
	"go-automate/theme"
	"go-automate/widgets"
)

const defaultWidth = 80

type statusKind int

const (
	statusInfo statusKind = iota
	statusError
	statusSaved
)

type Model struct {
	Editor  *editor.Editor
	Config  *config.Config
	Theme   *theme.Theme
	Project string

	track    int
	tick     int64
	viewFrom int64
	stream   automation.Stream
	width    int
	status   string
	kind     statusKind
	help     bool
	quitting bool
}

func NewModel(ed *editor.Editor, cfg *config.Config, th *theme.Theme, projectName string) Model {
	return Model{
		Editor:  ed,
		Config:  cfg,
		Theme:   th,
		Project: projectName,
		width:   defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// columns is the number of tick columns that fit the window.
func (m Model) columns() int {
	return max(m.width-2, 8)
}

func (m Model) ticksPerColumn() int64 {
	return int64(m.Config.TicksPerColumn)
}

// ref addresses the current stream of the block under the cursor.
func (m Model) ref() (command.CurveRef, bool) {
	b, ok := m.blockAtCursor()
	if !ok {
		return command.CurveRef{}, false
	}
	return command.CurveRef{Block: b.ID(), Stream: m.stream}, true
}

// blockAtCursor is the block that last started at or before the cursor.
func (m Model) blockAtCursor() (*automation.Block, bool) {
	if m.track >= len(m.Editor.Timeline.Tracks) {
		return nil, false
	}
	var found *automation.Block
	for _, b := range m.Editor.Timeline.Tracks[m.track].Blocks() {
		if b.Start() > m.tick {
			break
		}
		found = b
	}
	return found, found != nil
}

// keyAtCursor finds a keyframe of the current curve inside the cursor column.
func (m Model) keyAtCursor() (command.CurveRef, automation.Keyframe, bool) {
	ref, ok := m.ref()
	if !ok {
		return ref, automation.Keyframe{}, false
	}
	b, _ := m.Editor.Timeline.Store.Block(ref.Block)
	local := m.tick - b.Start()
	for _, k := range b.Curve(m.stream).Keys() {
		if k.Tick >= local && k.Tick < local+m.ticksPerColumn() {
			return ref, k, true
		}
	}
	return ref, automation.Keyframe{}, false
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.status = err.Error()
		m.kind = statusError
		debug.Log("tui", "%v", err)
	}
}

func (m *Model) moveCursor(cols int64) {
	m.tick = max(m.tick+cols*m.ticksPerColumn(), 0)
	width := int64(m.columns()) * m.ticksPerColumn()
	if m.tick < m.viewFrom {
		m.viewFrom = m.tick
	}
	if m.tick >= m.viewFrom+width {
		m.viewFrom = m.tick - width + m.ticksPerColumn()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		m.status, m.kind = "", statusInfo
		if m.handleKey(msg.String()) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleKey applies one key press and reports whether to quit.
func (m *Model) handleKey(key string) bool {
	ed := m.Editor
	tl := ed.Timeline
	tpc := m.ticksPerColumn()

	switch key {
	case "q", "ctrl+c":
		return true

	case "?":
		m.help = !m.help

	case "h", "left":
		m.moveCursor(-1)
	case "l", "right":
		m.moveCursor(1)
	case "H":
		m.moveCursor(-int64(m.Config.PPQ) / max(tpc, 1))
	case "L":
		m.moveCursor(int64(m.Config.PPQ) / max(tpc, 1))
	case "j", "down":
		if m.track < len(tl.Tracks)-1 {
			m.track++
		}
	case "k", "up":
		if m.track > 0 {
			m.track--
		}
	case "tab":
		if m.stream == automation.Primary {
			m.stream = automation.Secondary
		} else {
			m.stream = automation.Primary
		}

	case "n":
		m.setErr(ed.AddBlock(m.track, m.tick, fmt.Sprintf("Block %d", len(tl.Store.Blocks())+1)))

	case "a":
		ref, ok := m.ref()
		if !ok {
			m.status = "no block here (n adds one)"
			return false
		}
		b, _ := tl.Store.Block(ref.Block)
		value := 64.0
		if b.Curve(m.stream).Len() > 0 {
			value = b.Curve(m.stream).SampleAbsolute(m.tick)
		}
		m.setErr(ed.AddKey(ref, automation.NewKeyframe(m.tick-b.Start(), value, automation.Linear)))

	case " ":
		if ref, k, ok := m.keyAtCursor(); ok {
			ed.Selection.ToggleKey(ref, k.Tick)
		}
	case "b":
		if b, ok := m.blockAtCursor(); ok {
			ed.Selection.ToggleBlock(b.ID())
		}
	case "esc":
		ed.Selection.Clear()

	case "x":
		if ref, ok := m.ref(); ok {
			m.setErr(ed.DeleteSelectedKeys(ref))
		}
	case "X":
		m.setErr(ed.DeleteSelectedBlocks())

	case "t":
		if ref, k, ok := m.keyAtCursor(); ok {
			m.setErr(ed.SetSelectedType(ref, k.Type.Next()))
		}

	case "+", "=":
		if ref, ok := m.ref(); ok {
			m.setErr(ed.DragKeys(ref, 0, m.Config.ValueStep))
		}
	case "-", "_":
		if ref, ok := m.ref(); ok {
			m.setErr(ed.DragKeys(ref, 0, -m.Config.ValueStep))
		}
	case "<", ",":
		if ref, ok := m.ref(); ok {
			m.setErr(ed.DragKeys(ref, -tpc, 0))
		}
	case ">", ".":
		if ref, ok := m.ref(); ok {
			m.setErr(ed.DragKeys(ref, tpc, 0))
		}

	case "[", "]":
		if b, ok := m.blockAtCursor(); ok {
			delta := tpc
			if key == "[" {
				delta = -tpc
			}
			m.setErr(ed.MoveBlock(b.ID(), b.Start()+delta))
		}

	case "s":
		m.setErr(ed.Split(m.track, m.tick))
	case "m":
		m.setErr(ed.MergeSelected(automation.InsertMerge))
	case "M":
		m.setErr(ed.MergeSelected(automation.InsertReplace))
	case "d":
		if b, ok := m.blockAtCursor(); ok {
			m.setErr(ed.Duplicate(b.ID(), b.End()+tpc))
		}
	case "i":
		if b, ok := m.blockAtCursor(); ok {
			m.setErr(ed.Instance(b.ID(), m.track, b.End()+tpc))
		}
	case "u":
		if b, ok := m.blockAtCursor(); ok {
			m.setErr(ed.Detach(b.ID()))
		}

	case "c":
		if ref, ok := m.ref(); ok {
			m.setErr(ed.Copy(ref))
		}
	case "v":
		if ref, ok := m.ref(); ok {
			b, _ := tl.Store.Block(ref.Block)
			m.setErr(ed.Paste(ref, m.tick-b.Start()))
		}

	case "z", "ctrl+z":
		name, err := ed.Undo()
		m.setErr(err)
		if err == nil {
			m.status = "undo " + name
		}
	case "Z", "ctrl+y":
		name, err := ed.Redo()
		m.setErr(err)
		if err == nil {
			m.status = "redo " + name
		}

	case "w", "ctrl+s":
		filename, err := project.Save(m.Project, "", tl, m.Config.PPQ)
		m.setErr(err)
		if err == nil {
			m.status, m.kind = "saved "+filename, statusSaved
		}
	}
	return false
}

// lane builds the widget input for one track by sampling once per column.
func (m Model) lane(track int) widgets.Lane {
	tl := m.Editor.Timeline
	t := tl.Tracks[track]
	tpc := m.ticksPerColumn()
	cols := m.columns()
	sym := m.Theme.Symbols

	l := widgets.Lane{
		Title:   fmt.Sprintf("%d %s  ch%d cc%d", track+1, t.Name, t.Channel, t.Controller),
		Height:  m.Config.LaneHeight,
		Min:     0,
		Max:     127,
		Columns: make([]widgets.LaneColumn, cols),
		Cursor:  -1,
		Focused: track == m.track,
		Style: widgets.LaneStyle{
			Curve:      m.Theme.FG(),
			Held:       m.Theme.Muted(),
			Key:        m.Theme.Active(),
			Boundary:   m.Theme.Accent(),
			Selection:  m.Theme.Surface(),
			Cursor:     m.Theme.Cursor(),
			Label:      m.Theme.Accent(),
			CurveRune:  sym.Curve,
			HoldRune:   sym.Hold,
			CursorRune: sym.Cursor,
		},
	}
	if t.Muted {
		l.Title += "  muted"
	}
	if track == m.track {
		l.Cursor = int((m.tick - m.viewFrom) / max(tpc, 1))
	}

	blocks := t.Blocks()
	bi := -1
	for c := range l.Columns {
		from := m.viewFrom + int64(c)*tpc
		col := &l.Columns[c]
		for bi+1 < len(blocks) && blocks[bi+1].Start() < from+tpc {
			bi++
			if blocks[bi].Start() >= from {
				col.Boundary = sym.BlockStart
				if blocks[bi].IsInstance() {
					col.Boundary = sym.Instance
				}
			}
		}
		if bi < 0 {
			continue
		}
		b := blocks[bi]
		curve := b.Curve(m.stream)
		col.Selected = m.Editor.Selection.IsBlockSelected(b.ID())
		if curve.Len() == 0 {
			continue
		}
		col.Value = curve.SampleAbsolute(from)
		col.HasValue = true
		col.Held = from > b.End()

		ref := command.CurveRef{Block: b.ID(), Stream: m.stream}
		for _, k := range curve.Keys() {
			abs := b.Start() + k.Tick
			if abs >= from && abs < from+tpc {
				col.Key = m.Theme.KeySymbol(k.Type, m.Editor.Selection.IsKeySelected(ref, k.Tick))
				col.Value = k.Value
				break
			}
		}
	}
	return l
}

var keyHelp = []widgets.KeySection{
	{Title: "Cursor", Keys: []widgets.KeyBinding{
		{Key: "h/l H/L", Desc: "column / beat"},
		{Key: "j/k", Desc: "track"},
		{Key: "tab", Desc: "primary / secondary curve"},
	}},
	{Title: "Keyframes", Keys: []widgets.KeyBinding{
		{Key: "a", Desc: "add at cursor"},
		{Key: "space", Desc: "select"},
		{Key: "x", Desc: "delete selected"},
		{Key: "t", Desc: "cycle type"},
		{Key: "+/- </>", Desc: "drag value / time"},
		{Key: "c/v", Desc: "copy / paste"},
	}},
	{Title: "Blocks", Keys: []widgets.KeyBinding{
		{Key: "n", Desc: "new block"},
		{Key: "b", Desc: "select"},
		{Key: "X", Desc: "delete selected"},
		{Key: "[ ]", Desc: "move"},
		{Key: "s", Desc: "split at cursor"},
		{Key: "m/M", Desc: "merge / replace selected"},
		{Key: "d/i/u", Desc: "duplicate / instance / make unique"},
	}},
	{Title: "", Keys: []widgets.KeyBinding{
		{Key: "z/Z", Desc: "undo / redo"},
		{Key: "w", Desc: "save"},
		{Key: "q", Desc: "quit"},
	}},
}

// legend lists the keyframe markers by curve type.
func (m Model) legend() string {
	lines := []string{"Curve types"}
	for _, typ := range []automation.CurveType{automation.Step, automation.Linear, automation.Bezier} {
		lines = append(lines, widgets.RenderLegendItem(
			[3]uint8(m.Theme.KeyColor(typ)),
			string(m.Theme.KeySymbol(typ, false))+" "+typ.String(),
			segmentHelp[typ],
		))
	}
	return strings.Join(lines, "\n")
}

var segmentHelp = map[automation.CurveType]string{
	automation.Step:   "hold until the next key",
	automation.Linear: "straight ramp to the next key",
	automation.Bezier: "eased through the tangent handles",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Surface()).
		Padding(0, 1)
	switch m.kind {
	case statusError:
		statusStyle = statusStyle.Foreground(m.Theme.Warning())
	case statusSaved:
		statusStyle = statusStyle.Foreground(m.Theme.Success())
	}

	name := m.Project
	if name == "" {
		name = "(unsaved)"
	}
	ppq := int64(max(m.Config.PPQ, 1))
	header := headerStyle.Render(fmt.Sprintf("go-automate  %s  %s  bar %d beat %d tick %d",
		name, m.stream, m.tick/(4*ppq)+1, m.tick/ppq%4+1, m.tick))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	if len(m.Editor.Timeline.Tracks) == 0 {
		out.WriteString(dimStyle.Render("no tracks"))
		out.WriteString("\n")
	}
	for i := range m.Editor.Timeline.Tracks {
		out.WriteString(widgets.RenderLane(m.lane(i)))
		out.WriteString("\n\n")
	}

	if m.help {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
		out.WriteString("\n\n")
		out.WriteString(m.legend())
	} else {
		undo := m.Editor.History.UndoName()
		if undo == "" {
			undo = "-"
		}
		out.WriteString(dimStyle.Render("?:help  a:key  n:block  s:split  m:merge  z:undo (" + undo + ")  w:save  q:quit"))
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}
	return out.String()
}
