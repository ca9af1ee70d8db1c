package curves

import "math"

// Vec is a playfield coordinate.
type Vec struct {
	X, Y float64
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func Distance(a, b Vec) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PointOnLine returns the point reached after travelling length from p0
// towards p1. Lengths past p1 continue along the same direction.
func PointOnLine(p0, p1 Vec, length float64) Vec {
	full := Distance(p0, p1)
	if full == 0 {
		return p0
	}
	n := full - length
	return Vec{
		X: (n*p0.X + length*p1.X) / full,
		Y: (n*p0.Y + length*p1.Y) / full,
	}
}

func sub(a, b Vec) Vec       { return Vec{a.X - b.X, a.Y - b.Y} }
func cross(a, b Vec) float64 { return a.X*b.Y - a.Y*b.X }
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
func almostEq(a, b Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}
