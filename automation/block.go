package automation

import (
	"github.com/pkg/errors"

	"go-automate/debug"
)

// BlockID is a stable handle into a Store.
type BlockID uint64

// Stream picks one of the two curves of a block.
type Stream int

const (
	Primary Stream = iota
	Secondary
)

func (s Stream) String() string {
	if s == Secondary {
		return "secondary"
	}
	return "primary"
}

// SplitSuffix is appended to the titles of both halves of a split.
const SplitSuffix = " Split"

// OccupiedFunc reports whether a start tick is taken by another block on
// the same track.
type OccupiedFunc func(tick int64) bool

// Block is a titled pair of curves placed at a start tick. The primary and
// secondary curves always move together.
type Block struct {
	id        BlockID
	store     *Store
	start     int64
	title     string
	primary   *Curve
	secondary *Curve
	proto     BlockID
}

func (b *Block) ID() BlockID { return b.id }
func (b *Block) Start() int64 { return b.start }
func (b *Block) Title() string { return b.title }
func (b *Block) Primary() *Curve { return b.primary }
func (b *Block) Secondary() *Curve { return b.secondary }
func (b *Block) Prototype() BlockID { return b.proto }
func (b *Block) IsInstance() bool { return b.proto != 0 }

// SetTitle renames the block. Instances keep their own titles.
func (b *Block) SetTitle(title string) {
	b.title = title
}

// Curve returns the curve for a stream.
func (b *Block) Curve(s Stream) *Curve {
	if s == Secondary {
		return b.secondary
	}
	return b.primary
}

// End is the absolute tick of the last keyframe.
func (b *Block) End() int64 {
	return b.start + b.Duration()
}

// Duration is the larger last keyframe tick of the two curves, taken from
// the prototype block for instances.
func (b *Block) Duration() int64 {
	if b.proto != 0 {
		if p, ok := b.store.blocks[b.proto]; ok {
			return p.Duration()
		}
	}
	return max(b.primary.LastTick(), b.secondary.LastTick())
}

// Move re-anchors both curves at newStart, clamped to zero. It returns false
// and leaves the block untouched when occupied reports a collision.
func (b *Block) Move(newStart int64, occupied OccupiedFunc) bool {
	newStart = max(newStart, 0)
	if newStart == b.start {
		return true
	}
	if occupied != nil && occupied(newStart) {
		debug.Log("block", "move of %d to %d rejected: occupied", b.id, newStart)
		return false
	}
	b.start = newStart
	return true
}

// CloneCurves absorbs other's primary and secondary curves into this block.
func (b *Block) CloneCurves(other *Block) error {
	if b.proto != 0 {
		return errors.Wrapf(ErrNotMutable, "block %d", b.id)
	}
	if err := b.primary.Absorb(other.primary); err != nil {
		return err
	}
	return b.secondary.Absorb(other.secondary)
}

// DeepClone creates an independent copy at newStart in the same store.
func (b *Block) DeepClone(newStart int64) *Block {
	clone := b.store.attach(max(newStart, 0), b.title, b.primary.DeepClone(), b.secondary.DeepClone())
	clone.proto = b.proto
	return clone
}

// DeepCloneSplit cuts the block at an absolute tick into two new blocks, the
// first at the original start and the second starting at tick. The block
// itself is not modified. When tick is not strictly inside the block's span
// it returns b, nil, false.
func (b *Block) DeepCloneSplit(tick int64) (before, after *Block, ok bool) {
	offset := tick - b.start
	if offset <= 0 || offset >= b.Duration() {
		debug.Log("block", "split of %d at %d rejected: outside [%d, %d)", b.id, tick, b.start, b.End())
		return b, nil, false
	}

	p1, p2 := b.primary.DeepCloneSplit(offset)
	s1, s2 := b.secondary.DeepCloneSplit(offset)

	title := b.title + SplitSuffix
	before = b.store.attach(b.start, title, p1, s1)
	after = b.store.attach(tick, title, p2, s2)
	return before, after, true
}

// root follows the block prototype chain.
func (b *Block) root() *Block {
	r := b
	for r.proto != 0 {
		p, ok := b.store.blocks[r.proto]
		if !ok {
			break
		}
		r = p
	}
	return r
}

// SetInstanceOf makes both curves instances of proto's curves and discards
// any keyframes this block held.
func (b *Block) SetInstanceOf(proto *Block) error {
	if proto == nil {
		return errors.Wrap(ErrUnknownBlock, "nil prototype")
	}
	root := proto.root()
	if root == b || root.primary.source() == b.primary || root.secondary.source() == b.secondary {
		return errors.Wrapf(ErrCycle, "block %d instancing %d", b.id, proto.id)
	}
	if err := b.primary.SetInstanceOf(root.primary); err != nil {
		return err
	}
	if err := b.secondary.SetInstanceOf(root.secondary); err != nil {
		return err
	}
	b.proto = root.id
	return nil
}

// Detach makes an instance independent, copying the prototype's keyframes.
func (b *Block) Detach() {
	b.primary.Detach()
	b.secondary.Detach()
	b.proto = 0
}
