package automation

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"

	"go-automate/debug"
)

// CurveID is a stable handle into a Store.
type CurveID uint64

// InsertMode is the policy used when one curve's keyframes are merged into
// another. Both modes let the incoming keyframe win on a tick collision;
// timeline merges additionally use Replace to clear overlapped content.
type InsertMode int

const (
	InsertMerge InsertMode = iota
	InsertReplace
)

func (m InsertMode) String() string {
	if m == InsertReplace {
		return "replace"
	}
	return "merge"
}

// Curve is an ordered set of keyframes for one automation parameter.
//
// A curve may be an instance of another curve. Instances hold no keyframes:
// every read resolves through the prototype, every write is rejected with
// ErrNotMutable.
type Curve struct {
	id    CurveID
	store *Store
	owner BlockID
	proto CurveID
	keys  []Keyframe // sorted by Tick, unique
}

func (c *Curve) ID() CurveID { return c.id }

// Owner is the block this curve belongs to, zero when detached.
func (c *Curve) Owner() BlockID { return c.owner }

// Prototype is the curve this one reads through, zero when independent.
func (c *Curve) Prototype() CurveID { return c.proto }

func (c *Curve) IsInstance() bool { return c.proto != 0 }

// Origin is the absolute start tick of the owning block.
func (c *Curve) Origin() int64 {
	if b, ok := c.store.blocks[c.owner]; ok {
		return b.start
	}
	return 0
}

// source follows the prototype chain to the curve that owns the keyframes.
func (c *Curve) source() *Curve {
	src := c
	for src.proto != 0 {
		p, ok := c.store.curves[src.proto]
		if !ok {
			break
		}
		src = p
	}
	return src
}

func (c *Curve) mutable() error {
	if c.proto != 0 {
		debug.Log("curve", "rejected write through instance %d (prototype %d)", c.id, c.proto)
		return errors.Wrapf(ErrNotMutable, "curve %d", c.id)
	}
	return nil
}

// search returns the index of the first key with Tick >= tick.
func search(keys []Keyframe, tick int64) (int, bool) {
	return slices.BinarySearchFunc(keys, tick, func(k Keyframe, t int64) int {
		return cmp.Compare(k.Tick, t)
	})
}

func (c *Curve) insert(k Keyframe) {
	i, found := search(c.keys, k.Tick)
	if found {
		c.keys[i] = k
		return
	}
	c.keys = slices.Insert(c.keys, i, k)
}

// AddKey inserts k, replacing any keyframe at the same tick.
func (c *Curve) AddKey(k Keyframe) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if k.Tick < 0 {
		return errors.Wrapf(ErrOutOfRange, "keyframe tick %d", k.Tick)
	}
	c.insert(k)
	return nil
}

// DeleteKey removes the keyframe at k.Tick. Missing ticks are ignored.
func (c *Curve) DeleteKey(k Keyframe) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if i, found := search(c.keys, k.Tick); found {
		c.keys = slices.Delete(c.keys, i, i+1)
	}
	return nil
}

// SetKeys replaces the whole keyframe set. Duplicate ticks keep the last one.
func (c *Curve) SetKeys(keys []Keyframe) error {
	if err := c.mutable(); err != nil {
		return err
	}
	for _, k := range keys {
		if k.Tick < 0 {
			return errors.Wrapf(ErrOutOfRange, "keyframe tick %d", k.Tick)
		}
	}
	c.keys = nil
	for _, k := range keys {
		c.insert(k)
	}
	return nil
}

// Clear removes every keyframe.
func (c *Curve) Clear() error {
	if err := c.mutable(); err != nil {
		return err
	}
	c.keys = nil
	return nil
}

func (c *Curve) Len() int {
	return len(c.source().keys)
}

// Keys returns a copy of the keyframes in tick order.
func (c *Curve) Keys() []Keyframe {
	return slices.Clone(c.source().keys)
}

// Key returns the keyframe at position index in tick order.
func (c *Curve) Key(index int) (Keyframe, error) {
	keys := c.source().keys
	if index < 0 || index >= len(keys) {
		return Keyframe{}, errors.Wrapf(ErrOutOfRange, "keyframe index %d of %d", index, len(keys))
	}
	return keys[index], nil
}

// KeyAt returns the keyframe exactly at tick.
func (c *Curve) KeyAt(tick int64) (Keyframe, bool) {
	keys := c.source().keys
	if i, found := search(keys, tick); found {
		return keys[i], true
	}
	return Keyframe{}, false
}

// PrevKey returns the keyframe immediately before k.Tick.
func (c *Curve) PrevKey(k Keyframe) (Keyframe, bool) {
	keys := c.source().keys
	i, _ := search(keys, k.Tick)
	if i == 0 {
		return Keyframe{}, false
	}
	return keys[i-1], true
}

// NextKey returns the keyframe immediately after k.Tick.
func (c *Curve) NextKey(k Keyframe) (Keyframe, bool) {
	keys := c.source().keys
	i, found := search(keys, k.Tick)
	if found {
		i++
	}
	if i >= len(keys) {
		return Keyframe{}, false
	}
	return keys[i], true
}

// LastTick is the tick of the final keyframe, 0 when empty.
func (c *Curve) LastTick() int64 {
	keys := c.source().keys
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1].Tick
}

// Sample evaluates the curve at a tick local to the owning block. Values
// before the first and after the last keyframe are held flat. An empty curve
// samples as 0; callers check Len first.
func (c *Curve) Sample(tick int64) float64 {
	keys := c.source().keys
	n := len(keys)
	if n == 0 {
		return 0
	}
	if tick <= keys[0].Tick {
		return keys[0].Value
	}
	if tick >= keys[n-1].Tick {
		return keys[n-1].Value
	}

	i, found := search(keys, tick)
	if found {
		return keys[i].Value
	}
	return segmentValue(keys[i-1], keys[i], tick)
}

// SampleAbsolute evaluates the curve at a timeline tick.
func (c *Curve) SampleAbsolute(tick int64) float64 {
	return c.Sample(tick - c.Origin())
}

// ResolvedTangents returns the handles of the keyframe at index with unset
// tangents replaced by their defaults.
func (c *Curve) ResolvedTangents(index int) (in, out Tangent, err error) {
	keys := c.source().keys
	if index < 0 || index >= len(keys) {
		return Tangent{}, Tangent{}, errors.Wrapf(ErrOutOfRange, "keyframe index %d of %d", index, len(keys))
	}
	k := keys[index]

	in, out = k.In, k.Out
	if !in.IsSet() {
		in = Tangent{Ticks: DefaultTangentTicks}
		if index > 0 {
			in = inHandle(keys[index-1], k)
		}
	}
	if !out.IsSet() {
		out = Tangent{Ticks: DefaultTangentTicks}
		if index < len(keys)-1 {
			out = outHandle(k, keys[index+1])
		}
	}
	return in, out, nil
}

// DeepClone copies the keyframes into a new curve of the same store. Cloning
// an instance yields another instance of the same prototype. The clone is
// unowned and stays out of the arena until a block adopts it.
func (c *Curve) DeepClone() *Curve {
	clone := c.store.newCurve()
	clone.proto = c.proto
	clone.keys = slices.Clone(c.keys)
	return clone
}

// DeepCloneSplit partitions the keyframes at a local offset. Keys before the
// offset are copied unchanged; keys at or after it are rebased so the second
// curve starts at the cut. No keyframe is interpolated at the cut. Both
// results are independent unowned curves, even when c is an instance, and
// like DeepClone they enter the arena only when a block adopts them.
func (c *Curve) DeepCloneSplit(offset int64) (before, after *Curve) {
	keys := c.source().keys
	i, _ := search(keys, offset)

	before = c.store.newCurve()
	before.keys = slices.Clone(keys[:i])

	after = c.store.newCurve()
	for _, k := range keys[i:] {
		after.keys = append(after.keys, k.Shifted(-offset))
	}
	return before, after
}

// Merge copies every keyframe of other into c, overwriting on collision.
// Both modes behave alike on a single curve; clearing the span an incoming
// block covers under InsertReplace is up to the caller, which knows the span.
func (c *Curve) Merge(other *Curve, mode InsertMode) error {
	if err := c.mutable(); err != nil {
		return err
	}
	for _, k := range other.Keys() {
		c.insert(k)
	}
	debug.Log("curve", "merged %d keys from curve %d into %d (%s)", other.Len(), other.id, c.id, mode)
	return nil
}

// MergeAt copies other's keyframes shifted by offset ticks, overwriting on
// collision. Keys that would land before the origin are dropped.
func (c *Curve) MergeAt(other *Curve, offset int64) error {
	if err := c.mutable(); err != nil {
		return err
	}
	for _, k := range other.Keys() {
		k = k.Shifted(offset)
		if k.Tick < 0 {
			continue
		}
		c.insert(k)
	}
	return nil
}

// Absorb overwrites c with other's keyframes regardless of policy.
func (c *Curve) Absorb(other *Curve) error {
	return c.Merge(other, InsertReplace)
}

// DeleteRange removes keyframes with from <= Tick <= to.
func (c *Curve) DeleteRange(from, to int64) error {
	if err := c.mutable(); err != nil {
		return err
	}
	c.keys = slices.DeleteFunc(c.keys, func(k Keyframe) bool {
		return k.Tick >= from && k.Tick <= to
	})
	return nil
}

// SetInstanceOf makes c read through proto. Local keyframes are discarded.
func (c *Curve) SetInstanceOf(proto *Curve) error {
	if proto == nil {
		return errors.New("nil prototype")
	}
	root := proto.source()
	if root == c {
		return errors.Wrapf(ErrCycle, "curve %d", c.id)
	}
	c.keys = nil
	c.proto = root.id
	return nil
}

// Detach turns an instance into an independent copy of its prototype.
func (c *Curve) Detach() {
	if c.proto == 0 {
		return
	}
	c.keys = slices.Clone(c.source().keys)
	c.proto = 0
}
