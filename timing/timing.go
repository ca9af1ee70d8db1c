// Package timing turns a beatmap's timing points into the tempo context a
// slider needs to compute its duration.
package timing

import (
	"errors"
	"math"
	"sort"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("timing")
}

var ErrNoTimingPoints = errors.New("no timing points")

const (
	// inherited beat lengths encode slider velocity as -100/sv, sv in [0.1, 10]
	minInherited = -1000.0
	maxInherited = -10.0
)

// Context is the tempo in effect for one hit object.
type Context struct {
	// MPB is the inherited beat length, negative by convention: -100 / sv.
	MPB float64 `yaml:"mpb"`
	// BPM is the parent beat length in milliseconds; durations scale by BPM/100.
	BPM float64 `yaml:"bpm"`
}

// Velocity is the slider velocity multiplier encoded by MPB.
func (c Context) Velocity() float64 {
	if c.MPB >= 0 {
		return 1
	}
	return 100 / -c.MPB
}

// Point is a raw timing point. Uninherited points (red lines) set the beat
// length, inherited ones (green lines) the slider velocity.
type Point struct {
	Time        float64
	BeatLength  float64
	Uninherited bool
}

type entry struct {
	time float64
	ctx  Context
}

// Table resolves the Context in effect at a time.
type Table struct {
	entries []entry
}

// NewTable sorts points by time, keeping the file order for equal times.
func NewTable(points []Point) (*Table, error) {
	if len(points) == 0 {
		return nil, ErrNoTimingPoints
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })

	parent := math.NaN()
	for _, p := range pts {
		if p.Uninherited && !math.IsNaN(p.BeatLength) {
			parent = p.BeatLength
			break
		}
	}
	if math.IsNaN(parent) {
		return nil, errors.New("no uninherited timing point")
	}

	t := &Table{entries: make([]entry, 0, len(pts))}
	for _, p := range pts {
		var ctx Context
		if p.Uninherited {
			if !math.IsNaN(p.BeatLength) {
				parent = p.BeatLength
			}
			ctx = Context{MPB: -100, BPM: parent}
		} else {
			mpb := p.BeatLength
			if math.IsNaN(mpb) || mpb >= 0 {
				tracer().Debugf("inherited point at %.0f has beat length %v, using -100", p.Time, mpb)
				mpb = -100
			}
			ctx = Context{MPB: min(max(mpb, minInherited), maxInherited), BPM: parent}
		}
		t.entries = append(t.entries, entry{time: p.Time, ctx: ctx})
	}
	return t, nil
}

// At returns the context of the last point at or before time; times before
// the first point use the first point.
func (t *Table) At(time float64) Context {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].time > time })
	if i == 0 {
		return t.entries[0].ctx
	}
	return t.entries[i-1].ctx
}

func (t *Table) Len() int { return len(t.entries) }
