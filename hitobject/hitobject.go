// Package hitobject holds hit objects and resolves sliders into timed paths:
// duration, end point, ticks and the combo they are worth.
package hitobject

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"slidercalc/curves"
	"slidercalc/timing"
)

// tracer writes to trace with key 'hitobject'
func tracer() tracing.Trace {
	return tracing.Select("hitobject")
}

type Type int

const (
	TypeCircle   Type = 1 << iota // 1
	TypeSlider                    // 2
	TypeNewCombo                  // 4
	TypeSpinner                   // 8
)

func (t Type) IsSlider() bool { return t&TypeSlider != 0 }

// SliderTick is a timed point on a slider's path.
type SliderTick struct {
	Pos  curves.Vec `yaml:"pos,flow"`
	Time float64    `yaml:"time"`
}

// SliderParams are the slider inputs as a parser delivers them. Points do not
// include the slider head.
type SliderParams struct {
	Kind         curves.Kind
	Points       []curves.Vec
	Repeat       int
	PixelLength  float64
	TickDistance float64
	Timing       timing.Context
	PxPerBeat    float64
}

// Slider is the immutable slider part of a hit object. Points start with the
// head position.
type Slider SliderParams

// HitObject is one object of a beatmap. Slider and Resolved are nil unless
// the slider bit is set.
type HitObject struct {
	X, Y float64
	Time float64
	Type Type

	Slider   *Slider
	Resolved *Resolved
}

// New builds a hit object. Sliders are resolved immediately, including their
// dense path; params is ignored for other objects.
func New(x, y, time float64, typ Type, params *SliderParams) (*HitObject, error) {
	return NewMode(x, y, time, typ, params, WithPath)
}

// NewMode is New with the resolution mode chosen by the caller.
func NewMode(x, y, time float64, typ Type, params *SliderParams, mode Mode) (*HitObject, error) {
	h := &HitObject{X: x, Y: y, Time: time, Type: typ}
	if !typ.IsSlider() {
		return h, nil
	}
	if params == nil {
		return nil, fmt.Errorf("slider at %.0fms: %w", time, ErrMissingSlider)
	}
	points := make([]curves.Vec, 0, len(params.Points)+1)
	points = append(points, curves.V(x, y))
	points = append(points, params.Points...)
	s := Slider(*params)
	s.Points = points
	h.Slider = &s
	r, err := Resolve(time, h.Slider, mode)
	if err != nil {
		return nil, fmt.Errorf("slider at %.0fms: %w", time, err)
	}
	h.Resolved = r
	return h, nil
}

func (h *HitObject) Pos() curves.Vec { return curves.V(h.X, h.Y) }

// Reresolve returns a copy of h resolved again in mode. The receiver is not
// modified. Non-sliders are returned as-is.
func (h *HitObject) Reresolve(mode Mode) (*HitObject, error) {
	if !h.Type.IsSlider() {
		return h, nil
	}
	r, err := Resolve(h.Time, h.Slider, mode)
	if err != nil {
		return nil, fmt.Errorf("slider at %.0fms: %w", h.Time, err)
	}
	c := *h
	c.Resolved = r
	return &c, nil
}

// Combo is the number of combo increments the object gives: 1 for circles
// and spinners; for sliders head, ticks and tail once per pass, with the
// shared reverse arrows counted once.
func (h *HitObject) Combo() int {
	if !h.Type.IsSlider() || h.Resolved == nil {
		return 1
	}
	val := 2 + len(h.Resolved.Ticks)
	val *= h.Slider.Repeat
	val -= h.Slider.Repeat - 1
	return val
}

// EndTime is the time the object finishes; Time for anything but resolved
// sliders.
func (h *HitObject) EndTime() float64 {
	if h.Resolved == nil {
		return h.Time
	}
	return h.Resolved.EndTime
}
