package automation

import (
	"maps"
	"slices"

	"github.com/pkg/errors"
)

// Store is the arena that owns every curve and block of an editing session.
// Prototype and owner relations are handles resolved through it.
type Store struct {
	curves    map[CurveID]*Curve
	blocks    map[BlockID]*Block
	lastCurve CurveID
	lastBlock BlockID
}

func NewStore() *Store {
	return &Store{
		curves: make(map[CurveID]*Curve),
		blocks: make(map[BlockID]*Block),
	}
}

// newCurve allocates a handle without registering the curve. Curves enter
// the arena only through attach, so a clone no block adopts leaves nothing
// behind.
func (s *Store) newCurve() *Curve {
	s.lastCurve++
	return &Curve{id: s.lastCurve, store: s}
}

func (s *Store) attach(start int64, title string, primary, secondary *Curve) *Block {
	s.lastBlock++
	b := &Block{
		id:        s.lastBlock,
		store:     s,
		start:     start,
		title:     title,
		primary:   primary,
		secondary: secondary,
	}
	primary.owner = b.id
	secondary.owner = b.id
	s.blocks[b.id] = b
	s.curves[primary.id] = primary
	s.curves[secondary.id] = secondary
	return b
}

// NewBlock creates an empty, independent block.
func (s *Store) NewBlock(start int64, title string) *Block {
	return s.attach(max(start, 0), title, s.newCurve(), s.newCurve())
}

func (s *Store) Block(id BlockID) (*Block, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

func (s *Store) Curve(id CurveID) (*Curve, bool) {
	c, ok := s.curves[id]
	return c, ok
}

// Blocks returns every live block ordered by handle.
func (s *Store) Blocks() []*Block {
	ids := slices.Sorted(maps.Keys(s.blocks))
	out := make([]*Block, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.blocks[id])
	}
	return out
}

// Instances returns the live blocks whose curves read through b's curves.
func (s *Store) Instances(id BlockID) []*Block {
	b, ok := s.blocks[id]
	if !ok {
		return nil
	}
	var out []*Block
	for _, other := range s.Blocks() {
		if other == b {
			continue
		}
		if other.primary.proto == b.primary.id || other.secondary.proto == b.secondary.id ||
			other.primary.proto == b.secondary.id || other.secondary.proto == b.primary.id {
			out = append(out, other)
		}
	}
	return out
}

// Remove unregisters a block and its curves. The block value stays usable
// and can be put back with Restore.
func (s *Store) Remove(id BlockID) error {
	if _, ok := s.blocks[id]; !ok {
		return errors.Wrapf(ErrUnknownBlock, "block %d", id)
	}
	if inst := s.Instances(id); len(inst) > 0 {
		return errors.Wrapf(ErrHasInstances, "block %d is instanced by %d blocks", id, len(inst))
	}
	b := s.blocks[id]
	delete(s.blocks, id)
	delete(s.curves, b.primary.id)
	delete(s.curves, b.secondary.id)
	return nil
}

// Restore re-registers a block previously removed from this store.
func (s *Store) Restore(b *Block) error {
	if b.store != s {
		return errors.Errorf("block %d belongs to another store", b.id)
	}
	s.blocks[b.id] = b
	s.curves[b.primary.id] = b.primary
	s.curves[b.secondary.id] = b.secondary
	return nil
}
