package hitobject

import (
	"math"
	"sync"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidercalc/curves"
	"slidercalc/timing"
)

var plainTiming = timing.Context{MPB: -100, BPM: 500}

func slider(kind curves.Kind, pts []curves.Vec, repeat int, length, tickDist float64) *SliderParams {
	return &SliderParams{
		Kind:         kind,
		Points:       pts,
		Repeat:       repeat,
		PixelLength:  length,
		TickDistance: tickDist,
		Timing:       plainTiming,
		PxPerBeat:    100,
	}
}

func TestCircleHasNoSliderFields(t *testing.T) {
	for _, typ := range []Type{TypeCircle, TypeCircle | TypeNewCombo, TypeSpinner} {
		h, err := New(256, 192, 1000, typ, slider(curves.Bezier, []curves.Vec{curves.V(0, 0)}, 2, 100, 25))
		require.NoError(t, err)
		assert.Nil(t, h.Slider)
		assert.Nil(t, h.Resolved)
		assert.Equal(t, 1, h.Combo())
		assert.Equal(t, 1000.0, h.EndTime())

		again, err := h.Reresolve(ScoreOnly)
		require.NoError(t, err)
		assert.Nil(t, again.Resolved)
	}
}

func TestSliderWithoutParams(t *testing.T) {
	_, err := New(0, 0, 0, TypeSlider, nil)
	assert.ErrorIs(t, err, ErrMissingSlider)
}

func TestTwoPointPerfectBecomesLinear(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	h, err := New(0, 0, 1000, TypeSlider, slider(curves.Perfect, []curves.Vec{curves.V(200, 0)}, 1, 100, 25))
	require.NoError(t, err)
	require.Len(t, h.Slider.Points, 2)
	assert.Equal(t, curves.V(0, 0), h.Slider.Points[0])
	assert.Equal(t, curves.Perfect, h.Slider.Kind, "declared kind is kept on the input")

	r := h.Resolved
	assert.Equal(t, curves.Linear, r.Kind)
	assert.Equal(t, 500.0, r.Duration)
	assert.Equal(t, 1500.0, r.EndTime)
	assert.Equal(t, SliderTick{Pos: curves.V(100, 0), Time: 1500}, r.End)

	require.Len(t, r.Ticks, 3)
	for i, want := range []float64{25, 50, 75} {
		assert.InDelta(t, want, r.Ticks[i].Pos.X, 1e-9)
		assert.InDelta(t, 0, r.Ticks[i].Pos.Y, 1e-9)
	}
	assert.Equal(t, []float64{1125, 1250, 1375}, tickTimes(r.Ticks))
	assert.Equal(t, 5, h.Combo())
	assert.Equal(t, []curves.Vec{curves.V(0, 0), curves.V(200, 0)}, r.Path)
}

func TestPerfectRepeatCombo(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	h, err := New(0, 0, 0, TypeSlider, slider(curves.Perfect,
		[]curves.Vec{curves.V(50, 50), curves.V(100, 0)}, 2, 150, 50))
	require.NoError(t, err)
	r := h.Resolved
	assert.Equal(t, curves.Perfect, r.Kind)
	require.Len(t, r.Ticks, 2)
	assert.Equal(t, (2+2)*2-1, h.Combo())

	// sampled every 5 units from 0 to 150 inclusive
	require.Len(t, r.Path, 31)
	assert.InDelta(t, 0, r.Path[0].X, 1e-9)
	for _, p := range r.Path {
		assert.InDelta(t, 50, curves.Distance(p, curves.V(50, 0)), 1e-9)
	}
	assert.Equal(t, r.Path[len(r.Path)-1], r.End.Pos)
}

func TestPerfectWithManyPointsIsBezier(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	h, err := New(0, 0, 0, TypeSlider, slider(curves.Perfect,
		[]curves.Vec{curves.V(50, 0), curves.V(100, 0), curves.V(150, 0)}, 1, 120, 40))
	require.NoError(t, err)
	assert.Equal(t, curves.Bezier, h.Resolved.Kind)
	assert.InDelta(t, 120, h.Resolved.End.Pos.X, 1e-9)
	assert.Len(t, h.Resolved.Ticks, 2)
}

func TestDuration(t *testing.T) {
	s := &Slider{
		PixelLength: 200,
		Repeat:      1,
		PxPerBeat:   100,
		Timing:      timing.Context{MPB: -100, BPM: 180},
	}
	assert.InDelta(t, 360, Duration(s), 1e-9)

	// rounding happens before the tempo scale: ceil(100.5) * 2.5
	s = &Slider{
		PixelLength: 100.5,
		Repeat:      1,
		PxPerBeat:   100,
		Timing:      timing.Context{MPB: -100, BPM: 250},
	}
	assert.Equal(t, 252.5, Duration(s))

	s.Repeat = 3
	assert.Equal(t, math.Ceil(3.015*100)*2.5, Duration(s))
}

func TestLinearEndMatchesPath(t *testing.T) {
	h, err := New(0, 0, 0, TypeSlider, slider(curves.Linear, []curves.Vec{curves.V(30, 40)}, 1, 50, 10))
	require.NoError(t, err)
	path := h.Resolved.Path
	require.NotEmpty(t, path)
	assert.InDelta(t, path[len(path)-1].X, h.Resolved.End.Pos.X, 1e-9)
	assert.InDelta(t, path[len(path)-1].Y, h.Resolved.End.Pos.Y, 1e-9)
}

func TestUnsupportedCurveKind(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	_, err := New(0, 0, 0, TypeSlider, slider(curves.Kind('X'),
		[]curves.Vec{curves.V(50, 50), curves.V(100, 0)}, 1, 100, 25))
	assert.ErrorIs(t, err, ErrUnsupportedCurveKind)

	// two points are always linear, whatever the letter
	h, err := New(0, 0, 0, TypeSlider, slider(curves.Kind('X'), []curves.Vec{curves.V(100, 0)}, 1, 100, 25))
	require.NoError(t, err)
	assert.Equal(t, curves.Linear, h.Resolved.Kind)
}

func TestInvalidInput(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	pts := []curves.Vec{curves.V(100, 0)}
	cases := []struct {
		name   string
		params *SliderParams
		err    error
	}{
		{"zero length", slider(curves.Linear, pts, 1, 0, 25), ErrInvalidLength},
		{"negative length", slider(curves.Linear, pts, 1, -10, 25), ErrInvalidLength},
		{"nan length", slider(curves.Linear, pts, 1, math.NaN(), 25), ErrInvalidLength},
		{"no repeat", slider(curves.Linear, pts, 0, 100, 25), ErrInvalidRepeat},
		{"zero tick distance", slider(curves.Linear, pts, 1, 100, 0), ErrInvalidTickDistance},
		{"no points", slider(curves.Linear, nil, 1, 100, 25), ErrTooFewPoints},
		{"huge length", slider(curves.Linear, pts, 1, 1e300, 35), ErrInvalidLength},
		{"infinite length", slider(curves.Linear, pts, 1, math.Inf(1), 35), ErrInvalidLength},
		{"too many ticks", slider(curves.Linear, pts, 1, 60000, 1e-3), ErrInvalidTickDistance},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(0, 0, 0, TypeSlider, c.params)
			assert.ErrorIs(t, err, c.err)
		})
	}

	p := slider(curves.Linear, pts, 1, 100, 25)
	p.PxPerBeat = 0
	_, err := New(0, 0, 0, TypeSlider, p)
	assert.ErrorIs(t, err, ErrInvalidPxPerBeat)

	p = slider(curves.Linear, pts, 1, 100, 25)
	p.Timing = timing.Context{MPB: 500, BPM: 500}
	_, err = New(0, 0, 0, TypeSlider, p)
	assert.ErrorIs(t, err, ErrInvalidTiming)
}

func TestReresolve(t *testing.T) {
	h, err := New(0, 0, 200, TypeSlider, slider(curves.Bezier,
		[]curves.Vec{curves.V(50, 100), curves.V(100, 0)}, 1, 180, 30))
	require.NoError(t, err)
	require.NotEmpty(t, h.Resolved.Path)

	cheap, err := h.Reresolve(ScoreOnly)
	require.NoError(t, err)
	assert.Nil(t, cheap.Resolved.Path)
	assert.NotEmpty(t, h.Resolved.Path, "receiver must keep its path")
	assert.Equal(t, h.Resolved.Ticks, cheap.Resolved.Ticks)
	assert.Equal(t, h.Resolved.End, cheap.Resolved.End)
	assert.Equal(t, h.Combo(), cheap.Combo())
}

func TestRepeatKeepsTickPositions(t *testing.T) {
	pts := []curves.Vec{curves.V(60, 80), curves.V(120, 0)}
	once, err := New(0, 0, 0, TypeSlider, slider(curves.Catmull, pts, 1, 200, 33))
	require.NoError(t, err)
	thrice, err := New(0, 0, 0, TypeSlider, slider(curves.Catmull, pts, 3, 200, 33))
	require.NoError(t, err)

	require.Equal(t, len(once.Resolved.Ticks), len(thrice.Resolved.Ticks))
	for i := range once.Resolved.Ticks {
		assert.Equal(t, once.Resolved.Ticks[i].Pos, thrice.Resolved.Ticks[i].Pos)
	}
	n := len(once.Resolved.Ticks)
	assert.Equal(t, 2+n, once.Combo())
	assert.Equal(t, (2+n)*3-2, thrice.Combo())
}

func TestTickInvariants(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	kinds := []curves.Kind{curves.Linear, curves.Perfect, curves.Bezier, curves.Catmull}
	pts := []curves.Vec{curves.V(80, 120), curves.V(200, 40)}
	ctxs := []timing.Context{{MPB: -100, BPM: 500}, {MPB: -65, BPM: 333.33}, {MPB: -250, BPM: 181.8}}
	for _, kind := range kinds {
		for _, ctx := range ctxs {
			for repeat := 1; repeat <= 3; repeat++ {
				p := slider(kind, pts, repeat, 237.5, 17.5)
				p.Timing = ctx
				h, err := New(10, 10, 4321, TypeSlider, p)
				require.NoError(t, err)
				r := h.Resolved
				assert.Equal(t, h.Time+r.Duration, r.EndTime)
				assert.Equal(t, r.EndTime, r.End.Time)
				prev := h.Time
				for _, tick := range r.Ticks {
					assert.Greater(t, tick.Time, h.Time)
					assert.Less(t, tick.Time, r.EndTime)
					assert.GreaterOrEqual(t, tick.Time, prev)
					prev = tick.Time
				}
				if repeat == 1 {
					assert.Equal(t, 2+len(r.Ticks), h.Combo())
				}
			}
		}
	}
}

func TestResolveConcurrently(t *testing.T) {
	shared := timing.Context{MPB: -80, BPM: 400}
	want, err := Resolve(0, &Slider{
		Kind:         curves.Bezier,
		Points:       []curves.Vec{curves.V(0, 0), curves.V(100, 100), curves.V(200, 0)},
		Repeat:       2,
		PixelLength:  250,
		TickDistance: 40,
		Timing:       shared,
		PxPerBeat:    140,
	}, ScoreOnly)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Resolved, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Resolve(0, &Slider{
				Kind:         curves.Bezier,
				Points:       []curves.Vec{curves.V(0, 0), curves.V(100, 100), curves.V(200, 0)},
				Repeat:       2,
				PixelLength:  250,
				TickDistance: 40,
				Timing:       shared,
				PxPerBeat:    140,
			}, ScoreOnly)
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func tickTimes(ticks []SliderTick) []float64 {
	out := make([]float64, len(ticks))
	for i, tick := range ticks {
		out[i] = tick.Time
	}
	return out
}
