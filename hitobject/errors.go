package hitobject

import "errors"

var (
	// ErrUnsupportedCurveKind means the curve letter is none of L, P, B, C
	// after normalization. The beatmap is malformed.
	ErrUnsupportedCurveKind = errors.New("slider type not supported")

	ErrMissingSlider       = errors.New("slider bit set without slider parameters")
	ErrTooFewPoints        = errors.New("slider needs at least 2 control points")
	ErrInvalidLength       = errors.New("slider pixel length must be positive and at most 65536")
	ErrInvalidRepeat       = errors.New("slider repeat count must be at least 1")
	ErrInvalidTickDistance = errors.New("slider tick distance must be positive")
	ErrInvalidPxPerBeat    = errors.New("pixels per beat must be positive")
	ErrInvalidTiming       = errors.New("timing context gives no positive duration")
)
