package editor

import (
	"errors"
	"strings"
	"testing"

	"go-automate/automation"
	"go-automate/command"
	"go-automate/timeline"
)

func newEditor(t *testing.T) (*Editor, command.CurveRef) {
	t.Helper()
	e := New(nil, 0)
	e.Timeline.AddTrack(timeline.NewTrack("Mod", 1, 1))
	if err := e.AddBlock(0, 0, "intro"); err != nil {
		t.Fatal(err)
	}
	id := e.Selection.Blocks()[0]
	return e, command.CurveRef{Block: id, Stream: automation.Primary}
}

func TestAddKeySelectsIt(t *testing.T) {
	e, ref := newEditor(t)
	e.AddKey(ref, automation.NewKeyframe(0, 0, automation.Linear))
	e.AddKey(ref, automation.NewKeyframe(96, 127, automation.Linear))

	if got := e.Selection.Keys(ref); len(got) != 1 || got[0] != 96 {
		t.Errorf("selected = %v", got)
	}
	e.Undo()
	if got := e.Selection.Keys(ref); len(got) != 0 {
		t.Errorf("selection kept undone key: %v", got)
	}
}

func TestDragKeysSelectionFollows(t *testing.T) {
	e, ref := newEditor(t)
	e.AddKey(ref, automation.NewKeyframe(0, 10, automation.Linear))
	e.AddKey(ref, automation.NewKeyframe(48, 20, automation.Linear))
	e.Selection.SelectKey(ref, 0, true)

	if err := e.DragKeys(ref, 24, -5); err != nil {
		t.Fatal(err)
	}
	if got := e.Selection.Keys(ref); len(got) != 2 || got[0] != 24 || got[1] != 72 {
		t.Errorf("selected = %v", got)
	}
	c, _ := e.Curve(ref)
	if k, _ := c.KeyAt(72); k.Value != 15 {
		t.Errorf("KeyAt(72) = %+v", k)
	}

	if err := e.DragKeys(ref, -100, 0); !errors.Is(err, automation.ErrOutOfRange) {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteAndTypeNeedSelection(t *testing.T) {
	e, ref := newEditor(t)
	if err := e.DeleteSelectedKeys(ref); !errors.Is(err, timeline.ErrRejected) {
		t.Errorf("err = %v", err)
	}
	e.AddKey(ref, automation.NewKeyframe(12, 1, automation.Step))
	if err := e.SetSelectedType(ref, automation.Bezier); err != nil {
		t.Fatal(err)
	}
	c, _ := e.Curve(ref)
	if k, _ := c.KeyAt(12); k.Type != automation.Bezier {
		t.Errorf("type = %v", k.Type)
	}
	if err := e.DeleteSelectedKeys(ref); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestCopyPasteRelative(t *testing.T) {
	e, ref := newEditor(t)
	k := automation.NewKeyframe(10, 1, automation.Bezier)
	k.Out = automation.Tangent{Ticks: 4, Value: 2}
	e.AddKey(ref, k)
	e.AddKey(ref, automation.NewKeyframe(30, 3, automation.Step))
	e.Selection.SelectKey(ref, 10, true)

	if err := e.Copy(ref); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(e.Clipboard()), "type: bezier") {
		t.Errorf("clipboard:\n%s", e.Clipboard())
	}

	other := command.CurveRef{Block: ref.Block, Stream: automation.Secondary}
	if err := e.Paste(other, 100); err != nil {
		t.Fatal(err)
	}
	c, _ := e.Curve(other)
	keys := c.Keys()
	if len(keys) != 2 || keys[0].Tick != 100 || keys[1].Tick != 120 {
		t.Fatalf("pasted = %+v", keys)
	}
	if keys[0].Out != k.Out || keys[1].In.IsSet() {
		t.Errorf("tangents lost: %+v", keys)
	}
	if got := e.Selection.Keys(other); len(got) != 2 {
		t.Errorf("selected = %v", got)
	}

	e.Undo()
	if c.Len() != 0 {
		t.Error("paste not undone in one step")
	}
}

func TestPasteEmptyClipboard(t *testing.T) {
	e, ref := newEditor(t)
	if err := e.Paste(ref, 0); !errors.Is(err, ErrEmptyClipboard) {
		t.Errorf("err = %v", err)
	}
	e.SetClipboard([]byte("keys: []\n"))
	if err := e.Paste(ref, 0); !errors.Is(err, ErrEmptyClipboard) {
		t.Errorf("err = %v", err)
	}
}

func TestSplitAndMergeSelected(t *testing.T) {
	e, ref := newEditor(t)
	e.AddKey(ref, automation.NewKeyframe(0, 0, automation.Linear))
	e.AddKey(ref, automation.NewKeyframe(192, 100, automation.Linear))

	if err := e.Split(0, 96); err != nil {
		t.Fatal(err)
	}
	blocks := e.Timeline.Tracks[0].Blocks()
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	if _, ok := e.Timeline.Store.Block(ref.Block); ok {
		t.Error("split source still in store")
	}
	if len(e.Selection.Blocks()) != 0 {
		t.Error("selection kept removed block")
	}

	e.Selection.SelectBlock(blocks[0].ID(), false)
	e.Selection.SelectBlock(blocks[1].ID(), true)
	if err := e.MergeSelected(automation.InsertMerge); err != nil {
		t.Fatal(err)
	}
	merged := e.Timeline.Tracks[0].Blocks()
	if len(merged) != 1 || !e.Selection.IsBlockSelected(merged[0].ID()) {
		t.Fatalf("merge result %v selected %v", len(merged), e.Selection.Blocks())
	}
	if got := merged[0].Primary().Sample(192); got != 100 {
		t.Errorf("Sample(192) = %v", got)
	}
}

func TestBlockEditsThroughHistory(t *testing.T) {
	e, ref := newEditor(t)
	if err := e.Duplicate(ref.Block, 200); err != nil {
		t.Fatal(err)
	}
	if err := e.Instance(ref.Block, 0, 400); err != nil {
		t.Fatal(err)
	}
	inst, ok := e.Timeline.BlockAt(0, 400)
	if !ok || !inst.IsInstance() {
		t.Fatal("instance missing")
	}
	if err := e.Detach(inst.ID()); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveBlock(inst.ID(), 200); !errors.Is(err, timeline.ErrOccupied) {
		t.Errorf("err = %v", err)
	}
	if err := e.Rename(ref.Block, "verse"); err != nil {
		t.Fatal(err)
	}

	e.Selection.SelectBlock(inst.ID(), false)
	if err := e.DeleteSelectedBlocks(); err != nil {
		t.Fatal(err)
	}
	if e.Timeline.Tracks[0].Len() != 2 {
		t.Errorf("Len() = %d", e.Timeline.Tracks[0].Len())
	}
	for e.History.CanUndo() {
		if _, err := e.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	if e.Timeline.Tracks[0].Len() != 0 {
		t.Errorf("Len() = %d after undoing everything", e.Timeline.Tracks[0].Len())
	}
}

func TestSelectionPrune(t *testing.T) {
	e, ref := newEditor(t)
	e.AddKey(ref, automation.NewKeyframe(5, 1, automation.Step))
	s := e.Selection
	s.ToggleKey(ref, 5)
	if s.IsKeySelected(ref, 5) {
		t.Error("toggle did not deselect")
	}
	s.ToggleKey(ref, 5)
	s.SelectKey(ref, 99, true)
	s.Prune(e.Timeline.Store)
	if got := s.Keys(ref); len(got) != 1 || got[0] != 5 {
		t.Errorf("pruned keys = %v", got)
	}
	s.ToggleBlock(ref.Block)
	if s.IsBlockSelected(ref.Block) {
		t.Error("toggle did not deselect block")
	}
	s.SelectBlock(ref.Block, false)
	s.Clear()
	if len(s.Blocks()) != 0 || len(s.Keys(ref)) != 0 {
		t.Error("Clear left selection")
	}
}
