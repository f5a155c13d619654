package automation

import (
	"encoding/json"
	"testing"
)

func TestCurveTypeNames(t *testing.T) {
	tests := []struct {
		typ  CurveType
		name string
	}{
		{Step, "step"},
		{Linear, "linear"},
		{Bezier, "bezier"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		parsed, err := ParseCurveType(tt.name)
		if err != nil || parsed != tt.typ {
			t.Errorf("ParseCurveType(%q) = %v, %v", tt.name, parsed, err)
		}
	}
	if _, err := ParseCurveType("spline"); err == nil {
		t.Error("expected error for unknown curve type")
	}
	if Bezier.Next() != Step {
		t.Errorf("Bezier.Next() = %v, want step", Bezier.Next())
	}
}

func TestKeyframeJSONUsesTypeNames(t *testing.T) {
	k := NewKeyframe(10, 0.5, Bezier)
	data, err := json.Marshal(k)
	if err != nil {
		t.Fatal(err)
	}
	var back Keyframe
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(k) {
		t.Errorf("got %+v, want %+v (json %s)", back, k, data)
	}
}

func TestKeyframeCloneIsIndependent(t *testing.T) {
	k := NewKeyframe(96, 64, Bezier)
	k.Out = Tangent{Ticks: 12, Value: 3}

	c := k.Clone()
	if !c.Equal(k) {
		t.Fatalf("clone differs: %+v vs %+v", c, k)
	}
	c.Out.Value = 9
	c.Value = 1
	if k.Out.Value != 3 || k.Value != 64 {
		t.Errorf("original changed through clone: %+v", k)
	}
}

func TestNewKeyframeTangentsUnset(t *testing.T) {
	k := NewKeyframe(0, 0, Linear)
	if k.In.IsSet() || k.Out.IsSet() {
		t.Errorf("expected unset tangents, got in=%+v out=%+v", k.In, k.Out)
	}
	if !(Tangent{}).IsSet() {
		t.Error("zero tangent should count as authored")
	}
}
