package curves

// LinearCurve is a straight slider. Only its first segment takes part in
// distance lookups; Path keeps every control point.
type LinearCurve struct {
	points []Vec
}

func NewLinear(points []Vec) *LinearCurve {
	pts := make([]Vec, len(points))
	copy(pts, points)
	return &LinearCurve{points: pts}
}

func (c *LinearCurve) PointAtDistance(d float64) Vec {
	if len(c.points) < 2 {
		return c.points[0]
	}
	return PointOnLine(c.points[0], c.points[1], d)
}

func (c *LinearCurve) Path() []Vec {
	out := make([]Vec, len(c.points))
	copy(out, c.points)
	return out
}

func (c *LinearCurve) Length() float64 {
	l := 0.0
	for i := 1; i < len(c.points); i++ {
		l += Distance(c.points[i-1], c.points[i])
	}
	return l
}
