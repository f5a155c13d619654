package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MaxValue is the largest 7-bit data byte.
const MaxValue = 127

// Event is a control change at an absolute tick.
type Event struct {
	Tick       int64
	Channel    uint8 // 0-15
	Controller uint8
	Value      uint8
}

// Message builds the wire message.
func (e Event) Message() gomidi.Message {
	return gomidi.ControlChange(e.Channel, e.Controller, e.Value)
}

// Quantize rounds a curve value to a 7-bit data byte, clamping to 0-127.
func Quantize(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= MaxValue:
		return MaxValue
	}
	return uint8(v + 0.5)
}
