package automation

import "math"

// DefaultTangentTicks is the handle length for an unset tangent on a
// keyframe with no neighbor on that side.
const DefaultTangentTicks = 32.0

const (
	solveIterations = 64
	solveTolerance  = 1e-9
)

// segmentValue interpolates strictly between left.Tick and right.Tick using
// the segment type stored on left.
func segmentValue(left, right Keyframe, tick int64) float64 {
	switch left.Type {
	case Linear:
		t := float64(tick-left.Tick) / float64(right.Tick-left.Tick)
		return left.Value + (right.Value-left.Value)*t
	case Bezier:
		return bezierValue(left, right, float64(tick))
	default:
		return left.Value
	}
}

// outHandle is the forward handle of left toward right, auto-defaulted to a
// third of the segment when unset.
func outHandle(left, right Keyframe) Tangent {
	if left.Out.IsSet() {
		return left.Out
	}
	return Tangent{Ticks: float64(right.Tick-left.Tick) / 3}
}

// inHandle is the backward handle of right toward left.
func inHandle(left, right Keyframe) Tangent {
	if right.In.IsSet() {
		return right.In
	}
	return Tangent{Ticks: float64(right.Tick-left.Tick) / 3}
}

func bezierValue(left, right Keyframe, x float64) float64 {
	x0, x3 := float64(left.Tick), float64(right.Tick)
	span := x3 - x0

	out := outHandle(left, right)
	in := inHandle(left, right)

	// handles are clamped to the segment so the tick component stays inside it
	x1 := x0 + math.Min(out.Ticks, span)
	x2 := x3 - math.Min(in.Ticks, span)
	y1 := left.Value + out.Value
	y2 := right.Value - in.Value

	t := solveCubic(x0, x1, x2, x3, x)
	return cubic(left.Value, y1, y2, right.Value, t)
}

func cubic(p0, p1, p2, p3, t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

func cubicDerivative(p0, p1, p2, p3, t float64) float64 {
	mt := 1 - t
	return 3*mt*mt*(p1-p0) + 6*mt*t*(p2-p1) + 3*t*t*(p3-p2)
}

// solveCubic finds t in [0,1] with cubic(x0..x3, t) == x. Newton steps are
// taken while they stay inside the bracket, otherwise the bracket is halved.
// x must lie strictly between x0 and x3.
func solveCubic(x0, x1, x2, x3, x float64) float64 {
	lo, hi := 0.0, 1.0
	t := (x - x0) / (x3 - x0)

	for i := 0; i < solveIterations; i++ {
		fx := cubic(x0, x1, x2, x3, t) - x
		if math.Abs(fx) < solveTolerance {
			return t
		}
		if fx > 0 {
			hi = t
		} else {
			lo = t
		}

		next := math.NaN()
		if d := cubicDerivative(x0, x1, x2, x3, t); d != 0 {
			next = t - fx/d
		}
		if math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		t = next
	}
	return t
}
