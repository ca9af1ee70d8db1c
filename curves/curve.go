package curves

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'curves'
func tracer() tracing.Trace {
	return tracing.Select("curves")
}

// === constants chosen to mirror osu!lazer PathApproximator ===
const (
	bezTolSq   = 0.25 * 0.25 // BEZIER_TOLERANCE^2
	arcTol     = 0.10        // CIRCULAR_ARC_TOLERANCE (sagitta)
	catmullDet = 50          // CATMULL_DETAIL (samples per segment)
)

// Curve is an evaluated slider shape.
type Curve interface {
	// PointAtDistance returns the point reached after travelling d along
	// the curve from its first control point.
	PointAtDistance(d float64) Vec
	// Path is a dense sampling of the whole curve.
	Path() []Vec
	// Length of Path.
	Length() float64
}

// New builds the evaluator for kind from its control points. allowDuplicate
// only matters for Bezier, where a repeated point starts a new segment.
func New(kind Kind, points []Vec, allowDuplicate bool) (Curve, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%s curve without control points", kind)
	}
	switch kind {
	case Linear:
		return NewLinear(points), nil
	case Perfect:
		return NewPerfect(points), nil
	case Bezier:
		return NewBezier(points, allowDuplicate), nil
	case Catmull:
		return NewCatmull(points), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
}

// polyline is a flattened curve with cumulative arc lengths.
type polyline struct {
	pts []Vec
	cum []float64
}

func newPolyline(pts []Vec) polyline {
	pts = dedupe(pts)
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + Distance(pts[i-1], pts[i])
	}
	return polyline{pts: pts, cum: cum}
}

func (p polyline) Path() []Vec {
	out := make([]Vec, len(p.pts))
	copy(out, p.pts)
	return out
}

func (p polyline) Length() float64 {
	if len(p.cum) == 0 {
		return 0
	}
	return p.cum[len(p.cum)-1]
}

// PointAtDistance walks the polyline; distances past the end continue along
// the last segment.
func (p polyline) PointAtDistance(d float64) Vec {
	switch len(p.pts) {
	case 0:
		return Vec{}
	case 1:
		return p.pts[0]
	}
	if d <= 0 {
		return p.pts[0]
	}
	// first index whose cumulative length reaches d
	lo, hi := 1, len(p.cum)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if p.cum[mid] < d {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return PointOnLine(p.pts[lo-1], p.pts[lo], d-p.cum[lo-1])
}

func dedupe(pts []Vec) []Vec {
	out := make([]Vec, 0, len(pts))
	for _, v := range pts {
		if n := len(out); n == 0 || !almostEq(out[n-1], v) {
			out = append(out, v)
		}
	}
	return out
}
