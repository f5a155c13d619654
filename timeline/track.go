package timeline

import (
	"cmp"
	"slices"

	"go-automate/automation"
)

// Track is one automation lane on the timeline, bound to a MIDI controller.
// High resolution tracks send the primary curve as the MSB on Controller and
// the secondary curve as the LSB on Controller+32.
type Track struct {
	Name       string
	Channel    uint8 // MIDI channel (1-16)
	Controller uint8
	HighRes    bool
	Muted      bool

	blocks []*automation.Block // ordered by start tick
}

// NewTrack creates an empty track for a controller on a MIDI channel.
func NewTrack(name string, channel, controller uint8) *Track {
	return &Track{
		Name:       name,
		Channel:    channel,
		Controller: controller,
	}
}

// Blocks returns the track's blocks ordered by start tick.
func (t *Track) Blocks() []*automation.Block {
	return slices.Clone(t.blocks)
}

// Len is the number of blocks on the track.
func (t *Track) Len() int {
	return len(t.blocks)
}

// occupied reports whether a block other than except starts at tick.
func (t *Track) occupied(tick int64, except automation.BlockID) bool {
	for _, b := range t.blocks {
		if b.ID() != except && b.Start() == tick {
			return true
		}
	}
	return false
}

func (t *Track) index(id automation.BlockID) int {
	return slices.IndexFunc(t.blocks, func(b *automation.Block) bool {
		return b.ID() == id
	})
}

func (t *Track) add(b *automation.Block) {
	t.blocks = append(t.blocks, b)
	t.sort()
}

func (t *Track) remove(id automation.BlockID) {
	if i := t.index(id); i >= 0 {
		t.blocks = slices.Delete(t.blocks, i, i+1)
	}
}

func (t *Track) sort() {
	slices.SortFunc(t.blocks, func(a, b *automation.Block) int {
		if c := cmp.Compare(a.Start(), b.Start()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}

// covering returns the block with the latest start at or before tick.
func (t *Track) covering(tick int64) *automation.Block {
	var found *automation.Block
	for _, b := range t.blocks {
		if b.Start() > tick {
			break
		}
		found = b
	}
	return found
}
