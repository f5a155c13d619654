package midi

import (
	"go-automate/debug"
	"go-automate/timeline"
)

// LSBOffset is the distance from a 14-bit controller's MSB number to its
// LSB number.
const LSBOffset = 32

// Options controls rendering of a track to control changes.
type Options struct {
	From, To int64 // tick range, inclusive
	Step     int64 // sampling interval in ticks
}

// RenderTrack samples a track across opts.From..opts.To and returns control
// changes in tick order. A message is emitted only when its value differs
// from the last one sent on that controller. High-resolution tracks send the
// primary curve as MSB on Controller and the secondary curve as LSB on
// Controller+32. Muted tracks render nothing.
func RenderTrack(tl *timeline.Timeline, track int, opts Options) ([]Event, error) {
	t, err := tl.Track(track)
	if err != nil {
		return nil, err
	}
	if t.Muted || opts.To < opts.From {
		return nil, nil
	}
	step := max(opts.Step, 1)
	ch := max(t.Channel, 1) - 1

	lastMSB, lastLSB := -1, -1
	var events []Event
	emit := func(tick int64) {
		// a block keyed only on the LSB stream has nothing to say to a 7-bit track
		if b, ok := tl.Active(track, tick); !ok || (!t.HighRes && b.Primary().Len() == 0) {
			return
		}
		primary, secondary, ok := tl.Sample(track, tick)
		if !ok {
			return
		}
		if msb := int(Quantize(primary)); msb != lastMSB {
			events = append(events, Event{Tick: tick, Channel: ch, Controller: t.Controller, Value: uint8(msb)})
			lastMSB = msb
		}
		if !t.HighRes {
			return
		}
		if lsb := int(Quantize(secondary)); lsb != lastLSB {
			events = append(events, Event{Tick: tick, Channel: ch, Controller: t.Controller + LSBOffset, Value: uint8(lsb)})
			lastLSB = lsb
		}
	}

	tick := opts.From
	for ; tick <= opts.To; tick += step {
		emit(tick)
	}
	if tick-step != opts.To {
		emit(opts.To)
	}
	debug.Log("midi", "track %d %q: %d events in [%d, %d]", track, t.Name, len(events), opts.From, opts.To)
	return events, nil
}
