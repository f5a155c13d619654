package editor

import (
	"maps"
	"slices"

	"go-automate/automation"
	"go-automate/command"
)

// Selection holds what the user has picked. Keyframes and blocks carry no
// selection flags of their own; everything is keyed by handle and tick.
type Selection struct {
	blocks map[automation.BlockID]bool
	keys   map[command.CurveRef]map[int64]bool
}

func NewSelection() *Selection {
	return &Selection{
		blocks: make(map[automation.BlockID]bool),
		keys:   make(map[command.CurveRef]map[int64]bool),
	}
}

// SelectBlock picks id, dropping the previous block selection unless add
// is set.
func (s *Selection) SelectBlock(id automation.BlockID, add bool) {
	if !add {
		clear(s.blocks)
	}
	s.blocks[id] = true
}

// ToggleBlock flips the selection state of id.
func (s *Selection) ToggleBlock(id automation.BlockID) {
	if s.blocks[id] {
		delete(s.blocks, id)
		return
	}
	s.blocks[id] = true
}

func (s *Selection) IsBlockSelected(id automation.BlockID) bool {
	return s.blocks[id]
}

// Blocks returns the selected block handles in ascending order.
func (s *Selection) Blocks() []automation.BlockID {
	return slices.Sorted(maps.Keys(s.blocks))
}

// SelectKey picks the keyframe at tick on ref.
func (s *Selection) SelectKey(ref command.CurveRef, tick int64, add bool) {
	set := s.keys[ref]
	if set == nil || !add {
		set = make(map[int64]bool)
		s.keys[ref] = set
	}
	set[tick] = true
}

// ToggleKey flips the selection state of the keyframe at tick on ref.
func (s *Selection) ToggleKey(ref command.CurveRef, tick int64) {
	if s.keys[ref][tick] {
		delete(s.keys[ref], tick)
		return
	}
	s.SelectKey(ref, tick, true)
}

func (s *Selection) IsKeySelected(ref command.CurveRef, tick int64) bool {
	return s.keys[ref][tick]
}

// Keys returns the selected ticks on ref in ascending order.
func (s *Selection) Keys(ref command.CurveRef) []int64 {
	return slices.Sorted(maps.Keys(s.keys[ref]))
}

// SetKeys replaces the selected ticks on ref.
func (s *Selection) SetKeys(ref command.CurveRef, ticks []int64) {
	if len(ticks) == 0 {
		delete(s.keys, ref)
		return
	}
	set := make(map[int64]bool, len(ticks))
	for _, t := range ticks {
		set[t] = true
	}
	s.keys[ref] = set
}

// ClearKeys drops the key selection on every curve.
func (s *Selection) ClearKeys() {
	clear(s.keys)
}

// Clear drops everything.
func (s *Selection) Clear() {
	clear(s.blocks)
	clear(s.keys)
}

// Prune forgets handles that no longer resolve and ticks with no keyframe
// behind them. Called after edits and undo.
func (s *Selection) Prune(store *automation.Store) {
	for id := range s.blocks {
		if _, ok := store.Block(id); !ok {
			delete(s.blocks, id)
		}
	}
	for ref, set := range s.keys {
		b, ok := store.Block(ref.Block)
		if !ok {
			delete(s.keys, ref)
			continue
		}
		c := b.Curve(ref.Stream)
		for tick := range set {
			if _, ok := c.KeyAt(tick); !ok {
				delete(set, tick)
			}
		}
		if len(set) == 0 {
			delete(s.keys, ref)
		}
	}
}
