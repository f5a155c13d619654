package command

import (
	"github.com/pkg/errors"

	"go-automate/automation"
	"go-automate/timeline"
)

// changeCommand wraps a timeline edit that reports its Change. The first
// Apply performs the edit; later ones replay the recorded Change.
func changeCommand(tl *timeline.Timeline, name string, edit func() (timeline.Change, error)) Command {
	var ch timeline.Change
	done := false

	return Command{
		Name: name,
		Apply: func() error {
			if done {
				return tl.Reapply(ch)
			}
			c, err := edit()
			if err != nil {
				return err
			}
			ch, done = c, true
			return nil
		},
		Invert: func() error {
			return tl.Revert(ch)
		},
	}
}

// AddBlock creates an empty block.
func AddBlock(tl *timeline.Timeline, track int, start int64, title string) Command {
	return changeCommand(tl, "add block", func() (timeline.Change, error) {
		b, err := tl.AddBlock(track, start, title)
		if err != nil {
			return timeline.Change{}, err
		}
		return timeline.Change{Track: track, Added: []*automation.Block{b}}, nil
	})
}

// DeleteBlock removes a block.
func DeleteBlock(tl *timeline.Timeline, track int, id automation.BlockID) Command {
	return changeCommand(tl, "delete block", func() (timeline.Change, error) {
		b, err := tl.Remove(track, id)
		if err != nil {
			return timeline.Change{}, err
		}
		return timeline.Change{Track: track, Removed: []*automation.Block{b}}, nil
	})
}

// SplitBlock cuts a block at an absolute tick.
func SplitBlock(tl *timeline.Timeline, track int, id automation.BlockID, tick int64) Command {
	return changeCommand(tl, "split block", func() (timeline.Change, error) {
		return tl.Split(track, id, tick)
	})
}

// MergeBlocks joins blocks of a track.
func MergeBlocks(tl *timeline.Timeline, track int, ids []automation.BlockID, mode automation.InsertMode) Command {
	return changeCommand(tl, "merge blocks", func() (timeline.Change, error) {
		return tl.Merge(track, ids, mode)
	})
}

// DuplicateBlock places an independent copy at newStart.
func DuplicateBlock(tl *timeline.Timeline, track int, id automation.BlockID, newStart int64) Command {
	return changeCommand(tl, "duplicate block", func() (timeline.Change, error) {
		return tl.Duplicate(track, id, newStart)
	})
}

// InstanceBlock places an instance of proto at newStart.
func InstanceBlock(tl *timeline.Timeline, track int, proto automation.BlockID, newStart int64) Command {
	return changeCommand(tl, "instance block", func() (timeline.Change, error) {
		return tl.Instance(track, proto, newStart)
	})
}

// MoveBlock re-anchors a block; the inverse moves it back.
func MoveBlock(tl *timeline.Timeline, track int, id automation.BlockID, newStart int64) Command {
	var from int64
	return Command{
		Name: "move block",
		Apply: func() error {
			b, err := tl.Block(track, id)
			if err != nil {
				return err
			}
			from = b.Start()
			ok, err := tl.Move(track, id, newStart)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Wrapf(timeline.ErrOccupied, "track %d tick %d", track, newStart)
			}
			return nil
		},
		Invert: func() error {
			ok, err := tl.Move(track, id, from)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Wrapf(timeline.ErrOccupied, "track %d tick %d", track, from)
			}
			return nil
		},
	}
}

// DetachBlock turns an instance into an independent block.
func DetachBlock(tl *timeline.Timeline, id automation.BlockID) Command {
	var proto automation.BlockID
	return Command{
		Name: "make unique",
		Apply: func() error {
			b, ok := tl.Store.Block(id)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "block %d", id)
			}
			if !b.IsInstance() {
				return errors.Wrapf(timeline.ErrRejected, "block %d is not an instance", id)
			}
			proto = b.Prototype()
			b.Detach()
			return nil
		},
		Invert: func() error {
			b, ok := tl.Store.Block(id)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "block %d", id)
			}
			p, ok := tl.Store.Block(proto)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "prototype %d", proto)
			}
			return b.SetInstanceOf(p)
		},
	}
}

// RenameBlock changes a block title.
func RenameBlock(tl *timeline.Timeline, id automation.BlockID, title string) Command {
	var prev string
	return Command{
		Name: "rename block",
		Apply: func() error {
			b, ok := tl.Store.Block(id)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "block %d", id)
			}
			prev = b.Title()
			b.SetTitle(title)
			return nil
		},
		Invert: func() error {
			b, ok := tl.Store.Block(id)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "block %d", id)
			}
			b.SetTitle(prev)
			return nil
		},
	}
}

// SetInstanceOf makes an existing block an instance of proto. The inverse
// restores the block's own keyframes or its previous prototype.
func SetInstanceOf(tl *timeline.Timeline, id, proto automation.BlockID) Command {
	var (
		prev      automation.BlockID
		primary   []automation.Keyframe
		secondary []automation.Keyframe
	)
	return Command{
		Name: "set instance",
		Apply: func() error {
			b, ok := tl.Store.Block(id)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "block %d", id)
			}
			p, ok := tl.Store.Block(proto)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "prototype %d", proto)
			}
			prev = b.Prototype()
			primary = b.Primary().Keys()
			secondary = b.Secondary().Keys()
			return b.SetInstanceOf(p)
		},
		Invert: func() error {
			b, ok := tl.Store.Block(id)
			if !ok {
				return errors.Wrapf(automation.ErrUnknownBlock, "block %d", id)
			}
			if prev != 0 {
				p, ok := tl.Store.Block(prev)
				if !ok {
					return errors.Wrapf(automation.ErrUnknownBlock, "prototype %d", prev)
				}
				return b.SetInstanceOf(p)
			}
			b.Detach()
			if err := b.Primary().SetKeys(primary); err != nil {
				return err
			}
			return b.Secondary().SetKeys(secondary)
		},
	}
}
