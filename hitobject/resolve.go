package hitobject

import (
	"fmt"
	"math"

	"slidercalc/curves"
)

// Mode selects how much Resolve computes.
type Mode int

const (
	// ScoreOnly computes duration, end point and ticks.
	ScoreOnly Mode = iota
	// WithPath also samples the dense path for drawing.
	WithPath
)

// perfectPathStep is the arc distance between sampled points of a Perfect
// slider's path.
const perfectPathStep = 5

const (
	// maxPixelLength is the longest slider the game accepts.
	maxPixelLength = 65536
	// maxTicks bounds PixelLength/TickDistance.
	maxTicks = 1 << 16
)

// Resolved holds everything derived from a slider's inputs.
type Resolved struct {
	Kind     curves.Kind  `yaml:"kind"`
	Duration float64      `yaml:"duration"`
	EndTime  float64      `yaml:"end_time"`
	End      SliderTick   `yaml:"end"`
	Ticks    []SliderTick `yaml:"ticks"`
	Path     []curves.Vec `yaml:"path,omitempty"`
}

// Duration is the time in ms a slider takes for all its passes. The beat
// count is converted to ms and rounded up before the tempo scale applies.
func Duration(s *Slider) float64 {
	numBeats := (s.PixelLength * float64(s.Repeat)) / s.PxPerBeat
	return math.Ceil(numBeats*-s.Timing.MPB) * (s.Timing.BPM / 100)
}

func validate(s *Slider) error {
	switch {
	case s == nil:
		return ErrMissingSlider
	case len(s.Points) < 2:
		return ErrTooFewPoints
	case !(s.PixelLength > 0) || s.PixelLength > maxPixelLength:
		return fmt.Errorf("%w: %v", ErrInvalidLength, s.PixelLength)
	case s.Repeat < 1:
		return fmt.Errorf("%w: %d", ErrInvalidRepeat, s.Repeat)
	case !(s.TickDistance > 0) || math.IsInf(s.TickDistance, 0):
		return fmt.Errorf("%w: %v", ErrInvalidTickDistance, s.TickDistance)
	case s.PixelLength/s.TickDistance > maxTicks:
		return fmt.Errorf("%w: %v for length %v", ErrInvalidTickDistance, s.TickDistance, s.PixelLength)
	case !(s.PxPerBeat > 0):
		return fmt.Errorf("%w: %v", ErrInvalidPxPerBeat, s.PxPerBeat)
	}
	return nil
}

// Resolve computes the timed path of slider s starting at time. It has no
// side effects; either every derived value is returned or an error is.
func Resolve(time float64, s *Slider, mode Mode) (*Resolved, error) {
	if err := validate(s); err != nil {
		tracer().Errorf("rejecting slider at %.0fms: %v", time, err)
		return nil, err
	}
	duration := Duration(s)
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: mpb=%v bpm=%v", ErrInvalidTiming, s.Timing.MPB, s.Timing.BPM)
	}

	kind := curves.Normalize(s.Kind, len(s.Points))
	if kind != s.Kind {
		tracer().Debugf("slider at %.0fms: %s with %d points treated as %s", time, s.Kind, len(s.Points), kind)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w (%s)", ErrUnsupportedCurveKind, kind)
	}
	curve, err := curves.New(kind, s.Points, true)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrUnsupportedCurveKind, kind, err)
	}

	if b, ok := curve.(*curves.BezierCurve); ok && b.Segments() > 1 {
		tracer().Debugf("slider at %.0fms: bezier with %d red anchors", time, b.Segments()-1)
	}

	r := &Resolved{Kind: kind, Duration: duration, EndTime: time + duration}

	if mode == WithPath {
		switch kind {
		case curves.Linear, curves.Bezier, curves.Catmull:
			r.Path = curve.Path()
		case curves.Perfect:
			for l := 0.0; l <= s.PixelLength; l += perfectPathStep {
				r.Path = append(r.Path, curve.PointAtDistance(l))
			}
		}
	}

	pointAt := func(d float64) curves.Vec {
		if kind == curves.Linear {
			return curves.PointOnLine(s.Points[0], s.Points[1], d)
		}
		return curve.PointAtDistance(d)
	}

	r.End = SliderTick{Pos: pointAt(s.PixelLength), Time: r.EndTime}

	// ticks cover one traversal; repeats only count in duration and combo
	timePerTick := duration * (s.TickDistance / s.PixelLength)
	for d := s.TickDistance; d < s.PixelLength-1; d += s.TickDistance {
		r.Ticks = append(r.Ticks, SliderTick{
			Pos:  pointAt(d),
			Time: time + timePerTick*float64(len(r.Ticks)+1),
		})
	}
	return r, nil
}
