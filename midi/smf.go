package midi

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-automate/timeline"
)

// WriteSMF writes a type 1 Standard MIDI File with one track per timeline
// track. step is the sampling interval in ticks.
func WriteSMF(w io.Writer, tl *timeline.Timeline, ppq int, step int64) error {
	if ppq <= 0 || ppq > 0x7FFF {
		return errors.Errorf("invalid ppq %d", ppq)
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ppq)

	end := tl.End()
	for i, t := range tl.Tracks {
		events, err := RenderTrack(tl, i, Options{From: 0, To: end, Step: step})
		if err != nil {
			return err
		}

		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(t.Name))
		var last int64
		for _, e := range events {
			tr.Add(uint32(e.Tick-last), e.Message())
			last = e.Tick
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			return errors.Wrapf(err, "track %q", t.Name)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "write smf")
	}
	return nil
}

// WriteSMFFile is WriteSMF to a file path.
func WriteSMFFile(path string, tl *timeline.Timeline, ppq int, step int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSMF(f, tl, ppq, step); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
