package command

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"

	"go-automate/automation"
	"go-automate/timeline"
)

// CurveRef addresses one curve of a block by handle, so commands stay valid
// while blocks leave and return through undo.
type CurveRef struct {
	Block  automation.BlockID
	Stream automation.Stream
}

func (r CurveRef) resolve(tl *timeline.Timeline) (*automation.Curve, error) {
	b, ok := tl.Store.Block(r.Block)
	if !ok {
		return nil, errors.Wrapf(automation.ErrUnknownBlock, "block %d", r.Block)
	}
	return b.Curve(r.Stream), nil
}

// editKeys runs mutate once and records the keyframe set before and after
// it. Undo and redo swap the snapshots.
func editKeys(tl *timeline.Timeline, ref CurveRef, name string, mutate func(c *automation.Curve) error) Command {
	var before, after []automation.Keyframe
	applied := false

	return Command{
		Name: name,
		Apply: func() error {
			c, err := ref.resolve(tl)
			if err != nil {
				return err
			}
			if applied {
				return c.SetKeys(after)
			}
			if c.IsInstance() {
				return errors.Wrapf(automation.ErrNotMutable, "%s on block %d", name, ref.Block)
			}
			before = c.Keys()
			if err := mutate(c); err != nil {
				c.SetKeys(before)
				return err
			}
			after = c.Keys()
			applied = true
			return nil
		},
		Invert: func() error {
			c, err := ref.resolve(tl)
			if err != nil {
				return err
			}
			return c.SetKeys(before)
		},
	}
}

// AddKey inserts k, replacing whatever was at its tick.
func AddKey(tl *timeline.Timeline, ref CurveRef, k automation.Keyframe) Command {
	return editKeys(tl, ref, "add keyframe", func(c *automation.Curve) error {
		return c.AddKey(k)
	})
}

// DeleteKeys removes the keyframes at ticks.
func DeleteKeys(tl *timeline.Timeline, ref CurveRef, ticks []int64) Command {
	name := "delete keyframe"
	if len(ticks) > 1 {
		name = fmt.Sprintf("delete %d keyframes", len(ticks))
	}
	return editKeys(tl, ref, name, func(c *automation.Curve) error {
		removed := 0
		for _, tick := range ticks {
			if k, ok := c.KeyAt(tick); ok {
				if err := c.DeleteKey(k); err != nil {
					return err
				}
				removed++
			}
		}
		if removed == 0 {
			return errors.Wrap(timeline.ErrRejected, "no keyframes to delete")
		}
		return nil
	})
}

// SetKey replaces the keyframe at tick with k. k may carry a different tick.
func SetKey(tl *timeline.Timeline, ref CurveRef, tick int64, k automation.Keyframe) Command {
	return editKeys(tl, ref, "edit keyframe", func(c *automation.Curve) error {
		old, ok := c.KeyAt(tick)
		if !ok {
			return errors.Wrapf(timeline.ErrRejected, "no keyframe at %d", tick)
		}
		if err := c.DeleteKey(old); err != nil {
			return err
		}
		return c.AddKey(k)
	})
}

// SetCurveType changes the segment type of the keyframes at ticks.
func SetCurveType(tl *timeline.Timeline, ref CurveRef, ticks []int64, typ automation.CurveType) Command {
	return editKeys(tl, ref, "set curve type "+typ.String(), func(c *automation.Curve) error {
		for _, tick := range ticks {
			k, ok := c.KeyAt(tick)
			if !ok {
				continue
			}
			k.Type = typ
			if err := c.AddKey(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveKeys drags the keyframes at ticks by dTick and dValue. Moved keyframes
// overwrite unmoved ones they land on. The drag is rejected when any key
// would move before the block start.
func MoveKeys(tl *timeline.Timeline, ref CurveRef, ticks []int64, dTick int64, dValue float64) Command {
	return editKeys(tl, ref, "move keyframes", func(c *automation.Curve) error {
		var moving []automation.Keyframe
		for _, tick := range ticks {
			if k, ok := c.KeyAt(tick); ok {
				moving = append(moving, k)
			}
		}
		if len(moving) == 0 {
			return errors.Wrap(timeline.ErrRejected, "no keyframes to move")
		}
		if slices.ContainsFunc(moving, func(k automation.Keyframe) bool { return k.Tick+dTick < 0 }) {
			return errors.Wrapf(automation.ErrOutOfRange, "move by %d ticks", dTick)
		}
		for _, k := range moving {
			if err := c.DeleteKey(k); err != nil {
				return err
			}
		}
		for _, k := range moving {
			k = k.Shifted(dTick)
			k.Value += dValue
			if err := c.AddKey(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// PasteKeys inserts keys, whose ticks are relative, starting at tick at.
func PasteKeys(tl *timeline.Timeline, ref CurveRef, at int64, keys []automation.Keyframe) Command {
	return editKeys(tl, ref, fmt.Sprintf("paste %d keyframes", len(keys)), func(c *automation.Curve) error {
		for _, k := range keys {
			if err := c.AddKey(k.Shifted(at)); err != nil {
				return err
			}
		}
		return nil
	})
}
