package timeline

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"

	"go-automate/automation"
	"go-automate/debug"
)

var (
	// ErrUnknownTrack is returned for a track index outside the timeline.
	ErrUnknownTrack = errors.New("unknown track")

	// ErrOccupied is returned when a block would start on a tick another
	// block of the same track already starts on.
	ErrOccupied = errors.New("tick occupied")

	// ErrRejected is returned for structural edits refused up front, such as
	// a split outside the block or a merge of fewer than two blocks.
	ErrRejected = errors.New("edit rejected")
)

// Change lists the blocks a structural edit took off a track and put on
// it, so the edit can be reverted and re-applied atomically.
type Change struct {
	Track   int
	Removed []*automation.Block
	Added   []*automation.Block
}

// Timeline places automation blocks on tracks. It owns track membership;
// the blocks and curves live in Store.
type Timeline struct {
	Store  *automation.Store
	Tracks []*Track
}

// New creates an empty timeline over store (a fresh one when nil).
func New(store *automation.Store) *Timeline {
	if store == nil {
		store = automation.NewStore()
	}
	return &Timeline{Store: store}
}

// AddTrack appends a track and returns its index.
func (tl *Timeline) AddTrack(t *Track) int {
	tl.Tracks = append(tl.Tracks, t)
	return len(tl.Tracks) - 1
}

// Track returns the track at index.
func (tl *Timeline) Track(index int) (*Track, error) {
	if index < 0 || index >= len(tl.Tracks) {
		return nil, errors.Wrapf(ErrUnknownTrack, "track %d of %d", index, len(tl.Tracks))
	}
	return tl.Tracks[index], nil
}

// Block resolves a block on a track.
func (tl *Timeline) Block(track int, id automation.BlockID) (*automation.Block, error) {
	t, err := tl.Track(track)
	if err != nil {
		return nil, err
	}
	i := t.index(id)
	if i < 0 {
		return nil, errors.Wrapf(automation.ErrUnknownBlock, "block %d on track %d", id, track)
	}
	return t.blocks[i], nil
}

// TrackOf returns the index of the track holding block id.
func (tl *Timeline) TrackOf(id automation.BlockID) (int, bool) {
	for i, t := range tl.Tracks {
		if t.index(id) >= 0 {
			return i, true
		}
	}
	return -1, false
}

// IsTickOccupied reports whether a block on track starts at tick.
func (tl *Timeline) IsTickOccupied(track int, tick int64) bool {
	t, err := tl.Track(track)
	if err != nil {
		return false
	}
	return t.occupied(tick, 0)
}

// AddBlock creates an empty block on track.
func (tl *Timeline) AddBlock(track int, start int64, title string) (*automation.Block, error) {
	t, err := tl.Track(track)
	if err != nil {
		return nil, err
	}
	start = max(start, 0)
	if t.occupied(start, 0) {
		return nil, errors.Wrapf(ErrOccupied, "track %d tick %d", track, start)
	}
	b := tl.Store.NewBlock(start, title)
	t.add(b)
	debug.Log("timeline", "added block %d %q on track %d at %d", b.ID(), title, track, start)
	return b, nil
}

// Remove takes a block off its track and out of the store.
func (tl *Timeline) Remove(track int, id automation.BlockID) (*automation.Block, error) {
	b, err := tl.Block(track, id)
	if err != nil {
		return nil, err
	}
	if err := tl.Store.Remove(id); err != nil {
		return nil, err
	}
	tl.Tracks[track].remove(id)
	return b, nil
}

// Restore puts a removed block back on track.
func (tl *Timeline) Restore(track int, b *automation.Block) error {
	t, err := tl.Track(track)
	if err != nil {
		return err
	}
	if t.occupied(b.Start(), b.ID()) {
		return errors.Wrapf(ErrOccupied, "track %d tick %d", track, b.Start())
	}
	if err := tl.Store.Restore(b); err != nil {
		return err
	}
	t.add(b)
	return nil
}

// Move re-anchors a block. It reports false when another block of the same
// track already starts at newStart.
func (tl *Timeline) Move(track int, id automation.BlockID, newStart int64) (bool, error) {
	b, err := tl.Block(track, id)
	if err != nil {
		return false, err
	}
	t := tl.Tracks[track]
	ok := b.Move(newStart, func(tick int64) bool {
		return t.occupied(tick, id)
	})
	if ok {
		t.sort()
	}
	return ok, nil
}

// Split replaces a block with the two halves of a cut at an absolute tick.
func (tl *Timeline) Split(track int, id automation.BlockID, tick int64) (Change, error) {
	b, err := tl.Block(track, id)
	if err != nil {
		return Change{}, err
	}
	if tick <= b.Start() || tick >= b.End() {
		return Change{}, errors.Wrapf(ErrRejected, "split of block %d at %d outside [%d, %d)", id, tick, b.Start(), b.End())
	}
	if len(tl.Store.Instances(id)) > 0 {
		return Change{}, errors.Wrapf(automation.ErrHasInstances, "split of block %d", id)
	}
	if tl.Tracks[track].occupied(tick, id) {
		return Change{}, errors.Wrapf(ErrOccupied, "track %d tick %d", track, tick)
	}

	before, after, ok := b.DeepCloneSplit(tick)
	if !ok {
		return Change{}, errors.Wrapf(ErrRejected, "split of block %d at %d", id, tick)
	}
	ch := Change{
		Track:   track,
		Removed: []*automation.Block{b},
		Added:   []*automation.Block{before, after},
	}
	if err := tl.swap(ch); err != nil {
		return Change{}, err
	}
	debug.Log("timeline", "split block %d at %d into %d and %d", id, tick, before.ID(), after.ID())
	return ch, nil
}

// Merge replaces two or more blocks of a track with a single block at the
// earliest start. Curves are combined in start order; with InsertReplace the
// span of each later block first clears what the earlier blocks put there.
func (tl *Timeline) Merge(track int, ids []automation.BlockID, mode automation.InsertMode) (Change, error) {
	if len(ids) < 2 {
		return Change{}, errors.Wrapf(ErrRejected, "merge needs two blocks, got %d", len(ids))
	}
	var blocks []*automation.Block
	for _, id := range ids {
		b, err := tl.Block(track, id)
		if err != nil {
			return Change{}, err
		}
		if len(tl.Store.Instances(id)) > 0 {
			return Change{}, errors.Wrapf(automation.ErrHasInstances, "merge of block %d", id)
		}
		if !slices.Contains(blocks, b) {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) < 2 {
		return Change{}, errors.Wrap(ErrRejected, "merge of a single block")
	}
	slices.SortFunc(blocks, func(a, b *automation.Block) int {
		return cmp.Compare(a.Start(), b.Start())
	})

	first := blocks[0]
	merged := tl.Store.NewBlock(first.Start(), first.Title())
	if err := merged.CloneCurves(first); err != nil {
		return Change{}, err
	}
	for _, b := range blocks[1:] {
		offset := b.Start() - first.Start()
		for _, s := range []automation.Stream{automation.Primary, automation.Secondary} {
			dst := merged.Curve(s)
			// spans are half-open, so an empty block replaces nothing
			if mode == automation.InsertReplace && b.Duration() > 0 {
				if err := dst.DeleteRange(offset, offset+b.Duration()-1); err != nil {
					tl.Store.Remove(merged.ID())
					return Change{}, err
				}
			}
			if err := dst.MergeAt(b.Curve(s), offset); err != nil {
				tl.Store.Remove(merged.ID())
				return Change{}, err
			}
		}
	}

	ch := Change{
		Track:   track,
		Removed: blocks,
		Added:   []*automation.Block{merged},
	}
	if err := tl.swap(ch); err != nil {
		return Change{}, err
	}
	debug.Log("timeline", "merged %d blocks into %d (%s)", len(blocks), merged.ID(), mode)
	return ch, nil
}

// Duplicate places a deep copy of a block at newStart.
func (tl *Timeline) Duplicate(track int, id automation.BlockID, newStart int64) (Change, error) {
	b, err := tl.Block(track, id)
	if err != nil {
		return Change{}, err
	}
	newStart = max(newStart, 0)
	if tl.Tracks[track].occupied(newStart, 0) {
		return Change{}, errors.Wrapf(ErrOccupied, "track %d tick %d", track, newStart)
	}
	clone := b.DeepClone(newStart)
	tl.Tracks[track].add(clone)
	return Change{Track: track, Added: []*automation.Block{clone}}, nil
}

// Instance places a new block at newStart that reads through proto's curves.
// The prototype may live on any track.
func (tl *Timeline) Instance(track int, proto automation.BlockID, newStart int64) (Change, error) {
	t, err := tl.Track(track)
	if err != nil {
		return Change{}, err
	}
	p, ok := tl.Store.Block(proto)
	if !ok {
		return Change{}, errors.Wrapf(automation.ErrUnknownBlock, "prototype %d", proto)
	}
	newStart = max(newStart, 0)
	if t.occupied(newStart, 0) {
		return Change{}, errors.Wrapf(ErrOccupied, "track %d tick %d", track, newStart)
	}
	inst := tl.Store.NewBlock(newStart, p.Title())
	if err := inst.SetInstanceOf(p); err != nil {
		tl.Store.Remove(inst.ID())
		return Change{}, err
	}
	t.add(inst)
	return Change{Track: track, Added: []*automation.Block{inst}}, nil
}

// Revert undoes a change: added blocks leave, removed blocks return.
func (tl *Timeline) Revert(ch Change) error {
	return tl.apply(ch.Track, ch.Added, ch.Removed)
}

// Reapply performs a change again after Revert.
func (tl *Timeline) Reapply(ch Change) error {
	return tl.apply(ch.Track, ch.Removed, ch.Added)
}

func (tl *Timeline) apply(track int, remove, add []*automation.Block) error {
	t, err := tl.Track(track)
	if err != nil {
		return err
	}
	for _, b := range remove {
		if err := tl.Store.Remove(b.ID()); err != nil {
			return err
		}
		t.remove(b.ID())
	}
	for _, b := range add {
		if err := tl.Store.Restore(b); err != nil {
			return err
		}
		t.add(b)
	}
	return nil
}

// swap applies a freshly computed change whose checks already passed: the
// removed blocks are live and uninstanced, and the added ones were created in
// this store. On failure the removed blocks are put back.
func (tl *Timeline) swap(ch Change) error {
	if err := tl.Reapply(ch); err != nil {
		for _, b := range ch.Added {
			if got, ok := tl.Store.Block(b.ID()); ok && got == b {
				tl.Store.Remove(b.ID())
				tl.Tracks[ch.Track].remove(b.ID())
			}
		}
		for _, b := range ch.Removed {
			if _, ok := tl.Store.Block(b.ID()); !ok {
				tl.Store.Restore(b)
				tl.Tracks[ch.Track].add(b)
			}
		}
		return errors.Wrap(err, "apply change")
	}
	return nil
}

// BlockAt returns the block whose span [start, end] contains tick, preferring
// the latest start.
func (tl *Timeline) BlockAt(track int, tick int64) (*automation.Block, bool) {
	t, err := tl.Track(track)
	if err != nil {
		return nil, false
	}
	b := t.covering(tick)
	if b == nil || tick > b.End() {
		return nil, false
	}
	return b, true
}

// Active returns the block that last started at or before tick.
func (tl *Timeline) Active(track int, tick int64) (*automation.Block, bool) {
	t, err := tl.Track(track)
	if err != nil {
		return nil, false
	}
	b := t.covering(tick)
	return b, b != nil
}

// Sample evaluates the primary and secondary curves of the block that last
// started at or before tick. Each block holds its final value until the
// next block starts. ok is false before the first block or when neither
// curve of the block has keyframes.
func (tl *Timeline) Sample(track int, tick int64) (primary, secondary float64, ok bool) {
	b, ok := tl.Active(track, tick)
	if !ok || (b.Primary().Len() == 0 && b.Secondary().Len() == 0) {
		return 0, 0, false
	}
	local := tick - b.Start()
	return b.Primary().Sample(local), b.Secondary().Sample(local), true
}

// End is the last keyframe tick across every track.
func (tl *Timeline) End() int64 {
	var end int64
	for _, t := range tl.Tracks {
		for _, b := range t.blocks {
			end = max(end, b.End())
		}
	}
	return end
}
