package timeline

import (
	"errors"
	"testing"

	"go-automate/automation"
)

func newTimeline(t *testing.T) *Timeline {
	t.Helper()
	tl := New(nil)
	tl.AddTrack(NewTrack("Cutoff", 1, 74))
	return tl
}

func keys(t *testing.T, c *automation.Curve, ks ...automation.Keyframe) {
	t.Helper()
	for _, k := range ks {
		if err := c.AddKey(k); err != nil {
			t.Fatal(err)
		}
	}
}

func starts(tr *Track) []int64 {
	var out []int64
	for _, b := range tr.Blocks() {
		out = append(out, b.Start())
	}
	return out
}

func TestAddBlockRejectsOccupiedTick(t *testing.T) {
	tl := newTimeline(t)
	if _, err := tl.AddBlock(0, 96, "a"); err != nil {
		t.Fatal(err)
	}
	if !tl.IsTickOccupied(0, 96) || tl.IsTickOccupied(0, 97) {
		t.Error("occupancy query wrong")
	}
	if _, err := tl.AddBlock(0, 96, "b"); !errors.Is(err, ErrOccupied) {
		t.Errorf("err = %v, want ErrOccupied", err)
	}
	if _, err := tl.AddBlock(3, 0, "c"); !errors.Is(err, ErrUnknownTrack) {
		t.Errorf("err = %v, want ErrUnknownTrack", err)
	}
	if tl.Tracks[0].Len() != 1 {
		t.Errorf("Len() = %d", tl.Tracks[0].Len())
	}
}

func TestMoveKeepsOrderAndRejectsCollision(t *testing.T) {
	tl := newTimeline(t)
	a, _ := tl.AddBlock(0, 0, "a")
	b, _ := tl.AddBlock(0, 100, "b")

	ok, err := tl.Move(0, a.ID(), 100)
	if err != nil || ok {
		t.Fatalf("Move onto occupied = %v, %v", ok, err)
	}
	if a.Start() != 0 {
		t.Errorf("rejected move changed start to %d", a.Start())
	}

	if ok, _ := tl.Move(0, a.ID(), 200); !ok {
		t.Fatal("move rejected")
	}
	got := tl.Tracks[0].Blocks()
	if got[0] != b || got[1] != a {
		t.Errorf("order after move = %v", starts(tl.Tracks[0]))
	}
	if ok, _ := tl.Move(0, a.ID(), 200); !ok {
		t.Error("move onto own start should succeed")
	}
}

func TestSplitAndRevert(t *testing.T) {
	tl := newTimeline(t)
	b, _ := tl.AddBlock(0, 0, "Sweep")
	keys(t, b.Primary(),
		automation.NewKeyframe(0, 0, automation.Linear),
		automation.NewKeyframe(50, 50, automation.Linear),
		automation.NewKeyframe(150, 127, automation.Step),
	)

	ch, err := tl.Split(0, b.ID(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Removed) != 1 || len(ch.Added) != 2 {
		t.Fatalf("change = %+v", ch)
	}
	if got := starts(tl.Tracks[0]); len(got) != 2 || got[0] != 0 || got[1] != 100 {
		t.Errorf("starts = %v", got)
	}
	if _, ok := tl.Store.Block(b.ID()); ok {
		t.Error("original still in store")
	}

	if err := tl.Revert(ch); err != nil {
		t.Fatal(err)
	}
	blocks := tl.Tracks[0].Blocks()
	if len(blocks) != 1 || blocks[0] != b {
		t.Fatalf("revert left %v", starts(tl.Tracks[0]))
	}
	if err := tl.Reapply(ch); err != nil {
		t.Fatal(err)
	}
	if tl.Tracks[0].Len() != 2 {
		t.Errorf("reapply Len() = %d", tl.Tracks[0].Len())
	}
}

func TestSplitRejected(t *testing.T) {
	tl := newTimeline(t)
	b, _ := tl.AddBlock(0, 10, "x")
	keys(t, b.Primary(), automation.NewKeyframe(0, 0, automation.Step), automation.NewKeyframe(20, 1, automation.Step))

	for _, tick := range []int64{5, 10, 30, 31} {
		if _, err := tl.Split(0, b.ID(), tick); !errors.Is(err, ErrRejected) {
			t.Errorf("split at %d: err = %v", tick, err)
		}
	}
	if tl.Tracks[0].Len() != 1 || len(tl.Store.Blocks()) != 1 {
		t.Error("rejected split changed the timeline")
	}
}

func TestMergeModes(t *testing.T) {
	build := func(t *testing.T) (*Timeline, *automation.Block, *automation.Block) {
		tl := newTimeline(t)
		a, _ := tl.AddBlock(0, 0, "first")
		b, _ := tl.AddBlock(0, 100, "second")
		keys(t, a.Primary(),
			automation.NewKeyframe(0, 1, automation.Linear),
			automation.NewKeyframe(120, 2, automation.Linear),
			automation.NewKeyframe(300, 3, automation.Step),
		)
		keys(t, b.Primary(),
			automation.NewKeyframe(0, 10, automation.Linear),
			automation.NewKeyframe(50, 20, automation.Step),
		)
		keys(t, b.Secondary(), automation.NewKeyframe(10, 5, automation.Step))
		return tl, a, b
	}

	t.Run("merge", func(t *testing.T) {
		tl, a, b := build(t)
		ch, err := tl.Merge(0, []automation.BlockID{b.ID(), a.ID()}, automation.InsertMerge)
		if err != nil {
			t.Fatal(err)
		}
		m := ch.Added[0]
		if m.Start() != 0 || m.Title() != "first" {
			t.Errorf("merged start/title = %d, %q", m.Start(), m.Title())
		}
		if got := m.Primary().Len(); got != 5 {
			t.Errorf("primary keys = %d, want 5", got)
		}
		if k, ok := m.Secondary().KeyAt(110); !ok || k.Value != 5 {
			t.Errorf("secondary rebased key = %+v, %v", k, ok)
		}
		if tl.Tracks[0].Len() != 1 {
			t.Errorf("track Len() = %d", tl.Tracks[0].Len())
		}
	})

	t.Run("replace", func(t *testing.T) {
		tl, a, b := build(t)
		ch, err := tl.Merge(0, []automation.BlockID{a.ID(), b.ID()}, automation.InsertReplace)
		if err != nil {
			t.Fatal(err)
		}
		m := ch.Added[0]
		if _, ok := m.Primary().KeyAt(120); ok {
			t.Error("key inside the second block's span survived replace")
		}
		if _, ok := m.Primary().KeyAt(300); !ok {
			t.Error("key outside the span was dropped")
		}
		if err := tl.Revert(ch); err != nil {
			t.Fatal(err)
		}
		if tl.Tracks[0].Len() != 2 || a.Primary().Len() != 3 {
			t.Error("revert did not restore originals")
		}
	})

	t.Run("replace with empty block", func(t *testing.T) {
		tl := newTimeline(t)
		a, _ := tl.AddBlock(0, 0, "keyed")
		empty, _ := tl.AddBlock(0, 100, "empty")
		keys(t, a.Primary(),
			automation.NewKeyframe(0, 1, automation.Linear),
			automation.NewKeyframe(100, 2, automation.Linear),
			automation.NewKeyframe(200, 3, automation.Step),
		)
		ch, err := tl.Merge(0, []automation.BlockID{a.ID(), empty.ID()}, automation.InsertReplace)
		if err != nil {
			t.Fatal(err)
		}
		if got := ch.Added[0].Primary().Len(); got != 3 {
			t.Errorf("primary keys = %d, want 3", got)
		}
		if _, ok := ch.Added[0].Primary().KeyAt(100); !ok {
			t.Error("empty block cleared the key at its start")
		}
	})

	t.Run("replace keeps key at span end", func(t *testing.T) {
		tl := newTimeline(t)
		a, _ := tl.AddBlock(0, 0, "first")
		b, _ := tl.AddBlock(0, 100, "second")
		keys(t, a.Primary(),
			automation.NewKeyframe(0, 1, automation.Linear),
			automation.NewKeyframe(150, 2, automation.Linear),
		)
		keys(t, b.Primary(), automation.NewKeyframe(10, 7, automation.Step), automation.NewKeyframe(50, 8, automation.Step))
		ch, err := tl.Merge(0, []automation.BlockID{a.ID(), b.ID()}, automation.InsertReplace)
		if err != nil {
			t.Fatal(err)
		}
		// second covers [100, 150); the incoming key at 150 wins anyway
		m := ch.Added[0].Primary()
		if k, ok := m.KeyAt(150); !ok || k.Value != 8 {
			t.Errorf("key at 150 = %+v, %v", k, ok)
		}
		if _, ok := m.KeyAt(100); ok {
			t.Error("no key expected at 100")
		}
	})

	t.Run("single", func(t *testing.T) {
		tl, a, _ := build(t)
		if _, err := tl.Merge(0, []automation.BlockID{a.ID(), a.ID()}, automation.InsertMerge); !errors.Is(err, ErrRejected) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestInstanceAndDuplicate(t *testing.T) {
	tl := newTimeline(t)
	tl.AddTrack(NewTrack("Res", 1, 71))
	p, _ := tl.AddBlock(0, 0, "proto")
	keys(t, p.Primary(), automation.NewKeyframe(0, 1, automation.Step), automation.NewKeyframe(40, 2, automation.Step))

	ch, err := tl.Instance(1, p.ID(), 200)
	if err != nil {
		t.Fatal(err)
	}
	inst := ch.Added[0]
	if !inst.IsInstance() || inst.Duration() != 40 {
		t.Errorf("instance = %v, duration %d", inst.IsInstance(), inst.Duration())
	}
	if _, err := tl.Remove(0, p.ID()); !errors.Is(err, automation.ErrHasInstances) {
		t.Errorf("removing prototype: err = %v", err)
	}
	if _, err := tl.Split(0, p.ID(), 20); !errors.Is(err, automation.ErrHasInstances) {
		t.Errorf("splitting prototype: err = %v", err)
	}

	dup, err := tl.Duplicate(0, p.ID(), 500)
	if err != nil {
		t.Fatal(err)
	}
	if dup.Added[0].IsInstance() || dup.Added[0].Primary().Len() != 2 {
		t.Error("duplicate is not an independent copy")
	}
	if _, err := tl.Duplicate(0, p.ID(), 500); !errors.Is(err, ErrOccupied) {
		t.Errorf("err = %v", err)
	}
}

func TestSampleAndBlockAt(t *testing.T) {
	tl := newTimeline(t)
	a, _ := tl.AddBlock(0, 100, "a")
	keys(t, a.Primary(), automation.NewKeyframe(0, 10, automation.Linear), automation.NewKeyframe(100, 20, automation.Step))
	keys(t, a.Secondary(), automation.NewKeyframe(0, 3, automation.Step))

	if _, _, ok := tl.Sample(0, 99); ok {
		t.Error("sample before first block should be empty")
	}
	p, s, ok := tl.Sample(0, 150)
	if !ok || p != 15 || s != 3 {
		t.Errorf("Sample(150) = %v, %v, %v", p, s, ok)
	}
	if p, _, _ := tl.Sample(0, 1000); p != 20 {
		t.Errorf("held value = %v", p)
	}
	if b, ok := tl.BlockAt(0, 200); !ok || b != a {
		t.Error("BlockAt end tick")
	}
	if _, ok := tl.BlockAt(0, 201); ok {
		t.Error("BlockAt past end")
	}
	if tl.End() != 200 {
		t.Errorf("End() = %d", tl.End())
	}
}

func TestSampleSecondaryOnlyBlock(t *testing.T) {
	tl := newTimeline(t)
	a, _ := tl.AddBlock(0, 0, "lsb")
	keys(t, a.Secondary(), automation.NewKeyframe(0, 9, automation.Step))

	p, s, ok := tl.Sample(0, 10)
	if !ok || p != 0 || s != 9 {
		t.Errorf("Sample(10) = %v, %v, %v", p, s, ok)
	}
	if b, ok := tl.Active(0, 10); !ok || b != a {
		t.Error("Active did not find the block")
	}
	tl.AddBlock(0, 50, "empty")
	if _, _, ok := tl.Sample(0, 60); ok {
		t.Error("empty block sampled")
	}
}

func TestSwapRestoresOnFailure(t *testing.T) {
	tl := newTimeline(t)
	a, _ := tl.AddBlock(0, 0, "a")
	keys(t, a.Primary(), automation.NewKeyframe(0, 1, automation.Step))
	other := New(nil).Store.NewBlock(10, "foreign")

	err := tl.swap(Change{Track: 0, Removed: []*automation.Block{a}, Added: []*automation.Block{other}})
	if err == nil {
		t.Fatal("block from another store accepted")
	}
	if got, err := tl.Block(0, a.ID()); err != nil || got != a {
		t.Errorf("removed block not restored: %v", err)
	}
	if tl.Tracks[0].Len() != 1 {
		t.Errorf("track Len() = %d", tl.Tracks[0].Len())
	}
}
