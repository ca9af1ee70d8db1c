package main

import (
	"fmt"
	"sync"

	"slidercalc/curves"
	"slidercalc/dotosu"
	"slidercalc/hitobject"
	"slidercalc/timing"
)

type Summary struct {
	Objects  int
	Circles  int
	Sliders  int
	Spinners int
	MaxCombo int
	Length   float64
}

// TimingTable converts the decoded timing points.
func TimingTable(beatmap *dotosu.Beatmap) (*timing.Table, error) {
	points := make([]timing.Point, len(beatmap.TimingPoints))
	for i, tp := range beatmap.TimingPoints {
		points[i] = timing.Point{Time: tp.Time, BeatLength: tp.BeatLength, Uninherited: tp.Uninherited}
	}
	return timing.NewTable(points)
}

// SliderParams derives the slider inputs of object from the difficulty
// settings and the tempo in effect at its start.
func SliderParams(beatmap *dotosu.Beatmap, table *timing.Table, object dotosu.HitObject) *hitobject.SliderParams {
	ctx := table.At(float64(object.Time))
	pxPerBeat := 100 * beatmap.Difficulty.SliderMultiplier
	tickDistance := pxPerBeat / beatmap.Difficulty.SliderTickRate
	if beatmap.FormatVersion >= 8 {
		tickDistance *= ctx.Velocity()
	}
	points := make([]curves.Vec, len(object.CurvePoints))
	for i, p := range object.CurvePoints {
		points[i] = curves.V(float64(p.X), float64(p.Y))
	}
	return &hitobject.SliderParams{
		Kind:         curves.ParseKind(object.CurveType),
		Points:       points,
		Repeat:       object.Slides,
		PixelLength:  object.Length,
		TickDistance: tickDistance,
		Timing:       ctx,
		PxPerBeat:    pxPerBeat,
	}
}

// ConvertBeatmap builds every hit object of beatmap. Sliders are resolved on
// up to workers goroutines; objects share nothing but the timing table.
func ConvertBeatmap(beatmap *dotosu.Beatmap, mode hitobject.Mode, workers int) ([]*hitobject.HitObject, error) {
	table, err := TimingTable(beatmap)
	if err != nil {
		return nil, err
	}
	objects := make([]*hitobject.HitObject, len(beatmap.HitObjects))
	errs := make([]error, len(beatmap.HitObjects))

	tokens := make(chan struct{}, max(workers, 1))
	wg := sync.WaitGroup{}
	for i, object := range beatmap.HitObjects {
		var params *hitobject.SliderParams
		if object.IsSlider() {
			params = SliderParams(beatmap, table, object)
		}
		tokens <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-tokens }()
			objects[i], errs[i] = hitobject.NewMode(
				float64(object.Pos.X),
				float64(object.Pos.Y),
				float64(object.Time),
				hitobject.Type(object.Type),
				params,
				mode,
			)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("beatmapId=%d object %d: %w", beatmap.Metadata.BeatmapID, i, err)
		}
	}
	return objects, nil
}

func Summarize(beatmap *dotosu.Beatmap, objects []*hitobject.HitObject) Summary {
	var s Summary
	for i, h := range objects {
		s.Objects++
		s.MaxCombo += h.Combo()
		switch {
		case h.Type.IsSlider():
			s.Sliders++
		case beatmap.HitObjects[i].IsSpinner():
			s.Spinners++
		default:
			s.Circles++
		}
		end := h.EndTime()
		if beatmap.HitObjects[i].IsSpinner() {
			end = float64(beatmap.HitObjects[i].EndTime)
		}
		s.Length = max(s.Length, end)
	}
	return s
}
