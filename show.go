package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"slidercalc/store"
)

// ShowStored prints what the store holds for beatmap id: its summary, then
// the end point and ticks of every slider.
func ShowStored(ctx context.Context, w io.Writer, s *store.Store, id int) error {
	sum, err := s.Summary(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d: %s [%s]\n%d objects, %d sliders, max combo %dx\n",
		sum.ID, sum.Title, sum.Version, sum.Objects, sum.Sliders, sum.MaxCombo)

	for idx := range sum.Objects {
		end, err := s.SliderEnd(ctx, id, idx)
		if errors.Is(err, store.ErrNotSlider) {
			continue
		}
		if err != nil {
			return err
		}
		ticks, err := s.Ticks(ctx, id, idx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "#%d end (%.1f, %.1f) @%.0fms, %d ticks\n", idx, end.Pos.X, end.Pos.Y, end.Time, len(ticks))
		for _, tick := range ticks {
			fmt.Fprintf(w, "  (%.1f, %.1f) @%.0fms\n", tick.Pos.X, tick.Pos.Y, tick.Time)
		}
	}
	return nil
}
