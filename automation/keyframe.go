package automation

import (
	"fmt"
	"strings"
)

// CurveType selects how the segment starting at a keyframe is interpolated.
type CurveType int

const (
	Step CurveType = iota
	Linear
	Bezier
)

var curveTypeNames = [...]string{"step", "linear", "bezier"}

func (t CurveType) String() string {
	if t < 0 || int(t) >= len(curveTypeNames) {
		return fmt.Sprintf("CurveType(%d)", int(t))
	}
	return curveTypeNames[t]
}

// Next cycles Step -> Linear -> Bezier -> Step
func (t CurveType) Next() CurveType {
	return (t + 1) % CurveType(len(curveTypeNames))
}

// ParseCurveType accepts the names produced by String.
func ParseCurveType(s string) (CurveType, error) {
	for i, name := range curveTypeNames {
		if strings.EqualFold(s, name) {
			return CurveType(i), nil
		}
	}
	return Step, fmt.Errorf("unknown curve type %q", s)
}

func (t CurveType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *CurveType) UnmarshalText(text []byte) error {
	parsed, err := ParseCurveType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Tangent is a Bezier handle offset. Ticks is a length along the time axis
// and is never negative for an authored handle: an out tangent points
// forward, an in tangent points back toward the previous keyframe.
type Tangent struct {
	Ticks float64 `json:"ticks" yaml:"ticks"`
	Value float64 `json:"value" yaml:"value"`
}

// Unset marks a tangent that has not been authored yet.
var Unset = Tangent{Ticks: -1}

// IsSet reports whether the tangent was authored.
func (t Tangent) IsSet() bool {
	return t.Ticks >= 0
}

// Keyframe is a single control point. Tick is local to the owning block.
type Keyframe struct {
	Tick  int64     `json:"tick" yaml:"tick"`
	Value float64   `json:"value" yaml:"value"`
	Type  CurveType `json:"type" yaml:"type"`
	In    Tangent   `json:"in" yaml:"in"`
	Out   Tangent   `json:"out" yaml:"out"`
}

// NewKeyframe creates a keyframe with both tangents unset.
func NewKeyframe(tick int64, value float64, typ CurveType) Keyframe {
	return Keyframe{
		Tick:  tick,
		Value: value,
		Type:  typ,
		In:    Unset,
		Out:   Unset,
	}
}

// Clone returns an independent copy. Keyframes carry no selection state, so
// a clone is never implicitly selected.
func (k Keyframe) Clone() Keyframe {
	return k
}

// Equal compares tick, value, type and both tangents.
func (k Keyframe) Equal(o Keyframe) bool {
	return k.Tick == o.Tick &&
		k.Value == o.Value &&
		k.Type == o.Type &&
		k.In == o.In &&
		k.Out == o.Out
}

// Shifted returns a copy moved by delta ticks.
func (k Keyframe) Shifted(delta int64) Keyframe {
	k.Tick += delta
	return k
}
