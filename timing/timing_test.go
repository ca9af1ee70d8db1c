package timing

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyTable(t *testing.T) {
	_, err := NewTable(nil)
	assert.ErrorIs(t, err, ErrNoTimingPoints)

	_, err = NewTable([]Point{{Time: 0, BeatLength: -50}})
	assert.Error(t, err)
}

func TestTableAt(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	table, err := NewTable([]Point{
		{Time: 1000, BeatLength: -50},
		{Time: 0, BeatLength: 500, Uninherited: true},
		{Time: 2000, BeatLength: 300, Uninherited: true},
		{Time: 3000, BeatLength: -5},
		{Time: 4000, BeatLength: math.NaN()},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	assert.Equal(t, Context{MPB: -100, BPM: 500}, table.At(-200))
	assert.Equal(t, Context{MPB: -100, BPM: 500}, table.At(999))
	assert.Equal(t, Context{MPB: -50, BPM: 500}, table.At(1000))
	assert.Equal(t, Context{MPB: -100, BPM: 300}, table.At(2500))
	// clamped to sv 10
	assert.Equal(t, Context{MPB: -10, BPM: 300}, table.At(3000))
	assert.Equal(t, Context{MPB: -100, BPM: 300}, table.At(9000))
}

func TestVelocity(t *testing.T) {
	assert.InDelta(t, 2.0, Context{MPB: -50}.Velocity(), 1e-9)
	assert.InDelta(t, 1.0, Context{MPB: -100}.Velocity(), 1e-9)
	assert.InDelta(t, 1.0, Context{MPB: 300}.Velocity(), 1e-9)
}
