package curves

import "math"

// PerfectCurve is a circular arc through three points.
type PerfectCurve struct {
	start    Vec
	end      Vec
	center   Vec
	radius   float64
	startAng float64
	sweep    float64 // signed, radians
	dir      float64 // +1 when the angle grows along the arc, -1 otherwise

	fallback Curve // set when the points do not define a circle
}

// NewPerfect builds the arc through points[0], points[1], points[2]. Any
// other point count, or collinear points, yields a Bezier over the points.
func NewPerfect(points []Vec) *PerfectCurve {
	if len(points) != 3 {
		return &PerfectCurve{fallback: NewBezier(points, true)}
	}
	p1, p2, p3 := points[0], points[1], points[2]
	c, ok := circumcenter(p1, p2, p3)
	if !ok || collinear(p1, p2, p3) {
		tracer().Debugf("perfect curve %v %v %v is degenerate, using bezier", p1, p2, p3)
		return &PerfectCurve{fallback: NewBezier(points, true)}
	}
	dir := 1.0
	if cross(sub(p2, p1), sub(p3, p2)) < 0 {
		dir = -1.0
	}
	a1 := math.Atan2(p1.Y-c.Y, p1.X-c.X)
	a3 := math.Atan2(p3.Y-c.Y, p3.X-c.X)
	return &PerfectCurve{
		start:    p1,
		end:      p3,
		center:   c,
		radius:   Distance(c, p1),
		startAng: a1,
		sweep:    angleDiff(a1, a3, dir),
		dir:      dir,
	}
}

// PointAtDistance rotates the start point around the centre by d/r.
// Distances past the arc keep following the circle.
func (c *PerfectCurve) PointAtDistance(d float64) Vec {
	if c.fallback != nil {
		return c.fallback.PointAtDistance(d)
	}
	a := c.startAng + c.dir*d/c.radius
	return Vec{
		X: c.center.X + math.Cos(a)*c.radius,
		Y: c.center.Y + math.Sin(a)*c.radius,
	}
}

func (c *PerfectCurve) Length() float64 {
	if c.fallback != nil {
		return c.fallback.Length()
	}
	return math.Abs(c.sweep) * c.radius
}

// Path approximates the arc with a step derived from the sagitta tolerance.
func (c *PerfectCurve) Path() []Vec {
	if c.fallback != nil {
		return c.fallback.Path()
	}
	step := 2 * math.Acos(clamp(1.0-arcTol/c.radius, -1, 1))
	if step <= 0 || math.IsNaN(step) || step > math.Pi {
		step = math.Pi
	}
	steps := max(int(math.Ceil(math.Abs(c.sweep)/step)), 2)
	step = c.sweep / float64(steps)

	out := make([]Vec, 0, steps+1)
	out = append(out, c.start)
	for i := 1; i < steps; i++ {
		a := c.startAng + float64(i)*step
		out = append(out, Vec{c.center.X + math.Cos(a)*c.radius, c.center.Y + math.Sin(a)*c.radius})
	}
	return append(out, c.end)
}

func collinear(a, b, c Vec) bool {
	return math.Abs(cross(sub(b, a), sub(c, b))) < 1e-6
}

func circumcenter(a, b, c Vec) (Vec, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-8 {
		return Vec{}, false
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	return Vec{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}

// angleDiff is the signed sweep from aStart to aEnd turning in dir.
func angleDiff(aStart, aEnd, dir float64) float64 {
	d := aEnd - aStart
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	if dir < 0 && d > 0 {
		d -= 2 * math.Pi
	} else if dir > 0 && d < 0 {
		d += 2 * math.Pi
	}
	return d
}
