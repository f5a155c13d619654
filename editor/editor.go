package editor

import (
	"github.com/pkg/errors"

	"go-automate/automation"
	"go-automate/command"
	"go-automate/debug"
	"go-automate/timeline"
)

// Editor is one editing session: the timeline, its undo history, the
// selection and a clipboard. Every change goes through the history.
type Editor struct {
	Timeline  *timeline.Timeline
	History   *command.History
	Selection *Selection

	clipboard []byte
}

// New creates an editor over tl. historyLimit <= 0 uses the default.
func New(tl *timeline.Timeline, historyLimit int) *Editor {
	if tl == nil {
		tl = timeline.New(nil)
	}
	return &Editor{
		Timeline:  tl,
		History:   command.NewHistory(historyLimit),
		Selection: NewSelection(),
	}
}

func (e *Editor) do(c command.Command) error {
	err := e.History.Do(c)
	e.Selection.Prune(e.Timeline.Store)
	return err
}

// Undo reverts the last edit and returns its name.
func (e *Editor) Undo() (string, error) {
	name, err := e.History.Undo()
	e.Selection.Prune(e.Timeline.Store)
	return name, err
}

// Redo re-applies the last undone edit.
func (e *Editor) Redo() (string, error) {
	name, err := e.History.Redo()
	e.Selection.Prune(e.Timeline.Store)
	return name, err
}

// Curve resolves ref for reading.
func (e *Editor) Curve(ref command.CurveRef) (*automation.Curve, error) {
	b, ok := e.Timeline.Store.Block(ref.Block)
	if !ok {
		return nil, errors.Wrapf(automation.ErrUnknownBlock, "block %d", ref.Block)
	}
	return b.Curve(ref.Stream), nil
}

// Keyframes

// AddKey inserts k and makes it the only selected key on ref.
func (e *Editor) AddKey(ref command.CurveRef, k automation.Keyframe) error {
	if err := e.do(command.AddKey(e.Timeline, ref, k)); err != nil {
		return err
	}
	e.Selection.ClearKeys()
	e.Selection.SelectKey(ref, k.Tick, false)
	return nil
}

// DeleteSelectedKeys removes the selected keys on ref.
func (e *Editor) DeleteSelectedKeys(ref command.CurveRef) error {
	ticks := e.Selection.Keys(ref)
	if len(ticks) == 0 {
		return errors.Wrap(timeline.ErrRejected, "no keyframes selected")
	}
	return e.do(command.DeleteKeys(e.Timeline, ref, ticks))
}

// SetSelectedType changes the curve type of the selected keys on ref.
func (e *Editor) SetSelectedType(ref command.CurveRef, typ automation.CurveType) error {
	ticks := e.Selection.Keys(ref)
	if len(ticks) == 0 {
		return errors.Wrap(timeline.ErrRejected, "no keyframes selected")
	}
	return e.do(command.SetCurveType(e.Timeline, ref, ticks, typ))
}

// DragKeys moves the selected keys on ref. The selection follows them.
func (e *Editor) DragKeys(ref command.CurveRef, dTick int64, dValue float64) error {
	ticks := e.Selection.Keys(ref)
	if len(ticks) == 0 {
		return errors.Wrap(timeline.ErrRejected, "no keyframes selected")
	}
	if err := e.do(command.MoveKeys(e.Timeline, ref, ticks, dTick, dValue)); err != nil {
		return err
	}
	moved := make([]int64, len(ticks))
	for i, t := range ticks {
		moved[i] = t + dTick
	}
	e.Selection.SetKeys(ref, moved)
	return nil
}

// Copy puts the selected keys on ref into the clipboard.
func (e *Editor) Copy(ref command.CurveRef) error {
	c, err := e.Curve(ref)
	if err != nil {
		return err
	}
	var keys []automation.Keyframe
	for _, t := range e.Selection.Keys(ref) {
		if k, ok := c.KeyAt(t); ok {
			keys = append(keys, k)
		}
	}
	data, err := marshalKeys(keys)
	if err != nil {
		return err
	}
	e.clipboard = data
	debug.Log("command", "copied %d keyframes", len(keys))
	return nil
}

// Paste inserts the clipboard on ref with its first key at tick at and
// selects the pasted keys.
func (e *Editor) Paste(ref command.CurveRef, at int64) error {
	keys, err := unmarshalKeys(e.clipboard)
	if err != nil {
		return err
	}
	if err := e.do(command.PasteKeys(e.Timeline, ref, at, keys)); err != nil {
		return err
	}
	ticks := make([]int64, len(keys))
	for i, k := range keys {
		ticks[i] = k.Tick + at
	}
	e.Selection.ClearKeys()
	e.Selection.SetKeys(ref, ticks)
	return nil
}

// Clipboard returns the raw YAML clipboard.
func (e *Editor) Clipboard() []byte { return e.clipboard }

// SetClipboard replaces the clipboard, e.g. with text from the system
// clipboard.
func (e *Editor) SetClipboard(data []byte) { e.clipboard = data }

// Blocks

// AddBlock creates an empty block and selects it.
func (e *Editor) AddBlock(track int, start int64, title string) error {
	if err := e.do(command.AddBlock(e.Timeline, track, start, title)); err != nil {
		return err
	}
	if b, ok := e.Timeline.BlockAt(track, max(start, 0)); ok {
		e.Selection.SelectBlock(b.ID(), false)
	}
	return nil
}

// DeleteSelectedBlocks removes every selected block. The deletions are
// individual history entries.
func (e *Editor) DeleteSelectedBlocks() error {
	ids := e.Selection.Blocks()
	if len(ids) == 0 {
		return errors.Wrap(timeline.ErrRejected, "no blocks selected")
	}
	for _, id := range ids {
		track, ok := e.Timeline.TrackOf(id)
		if !ok {
			continue
		}
		if err := e.do(command.DeleteBlock(e.Timeline, track, id)); err != nil {
			return err
		}
	}
	return nil
}

// MoveBlock re-anchors a block. A move onto an occupied tick is rejected.
func (e *Editor) MoveBlock(id automation.BlockID, newStart int64) error {
	track, err := e.trackOf(id)
	if err != nil {
		return err
	}
	return e.do(command.MoveBlock(e.Timeline, track, id, newStart))
}

// Split cuts the block covering tick on track.
func (e *Editor) Split(track int, tick int64) error {
	b, ok := e.Timeline.BlockAt(track, tick)
	if !ok {
		return errors.Wrapf(timeline.ErrRejected, "no block at %d", tick)
	}
	return e.do(command.SplitBlock(e.Timeline, track, b.ID(), tick))
}

// MergeSelected joins the selected blocks, which must share a track, and
// selects the result.
func (e *Editor) MergeSelected(mode automation.InsertMode) error {
	ids := e.Selection.Blocks()
	if len(ids) < 2 {
		return errors.Wrap(timeline.ErrRejected, "select at least two blocks")
	}
	track, err := e.trackOf(ids[0])
	if err != nil {
		return err
	}
	var first int64 = -1
	for _, id := range ids {
		if t, _ := e.Timeline.TrackOf(id); t != track {
			return errors.Wrap(timeline.ErrRejected, "blocks on different tracks")
		}
		b, _ := e.Timeline.Store.Block(id)
		if first < 0 || b.Start() < first {
			first = b.Start()
		}
	}
	if err := e.do(command.MergeBlocks(e.Timeline, track, ids, mode)); err != nil {
		return err
	}
	if b, ok := e.Timeline.BlockAt(track, first); ok {
		e.Selection.SelectBlock(b.ID(), false)
	}
	return nil
}

// Duplicate copies a block to newStart on the same track.
func (e *Editor) Duplicate(id automation.BlockID, newStart int64) error {
	track, err := e.trackOf(id)
	if err != nil {
		return err
	}
	return e.do(command.DuplicateBlock(e.Timeline, track, id, newStart))
}

// Instance places an instance of id at newStart on track.
func (e *Editor) Instance(id automation.BlockID, track int, newStart int64) error {
	return e.do(command.InstanceBlock(e.Timeline, track, id, newStart))
}

// Detach makes an instance block independent.
func (e *Editor) Detach(id automation.BlockID) error {
	return e.do(command.DetachBlock(e.Timeline, id))
}

// Rename changes a block title.
func (e *Editor) Rename(id automation.BlockID, title string) error {
	return e.do(command.RenameBlock(e.Timeline, id, title))
}

func (e *Editor) trackOf(id automation.BlockID) (int, error) {
	track, ok := e.Timeline.TrackOf(id)
	if !ok {
		return -1, errors.Wrapf(automation.ErrUnknownBlock, "block %d", id)
	}
	return track, nil
}
