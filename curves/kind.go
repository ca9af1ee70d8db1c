package curves

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedKind = errors.New("curve kind not supported")

// Kind is the curve tag of a slider, stored as its .osu letter.
type Kind byte

const (
	Linear  Kind = 'L'
	Perfect Kind = 'P'
	Bezier  Kind = 'B'
	Catmull Kind = 'C'
)

// ParseKind maps a path-type letter to a Kind. Letters are case sensitive;
// unknown ones are kept as-is so the caller can report them.
func ParseKind(s string) Kind {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return Kind(s[0])
}

func (k Kind) Valid() bool {
	switch k {
	case Linear, Perfect, Bezier, Catmull:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case Linear:
		return "Linear"
	case Perfect:
		return "Perfect"
	case Bezier:
		return "Bezier"
	case Catmull:
		return "Catmull"
	case 0:
		return "none"
	}
	return fmt.Sprintf("Kind(%q)", rune(k))
}

// Normalize corrects declarations the evaluators cannot honour: a circular
// arc is only defined by 3 points, and any 2-point curve is a segment.
func Normalize(k Kind, points int) Kind {
	if k == Perfect && points > 3 {
		return Bezier
	}
	if points == 2 {
		return Linear
	}
	return k
}

// MarshalText writes the .osu letter.
func (k Kind) MarshalText() ([]byte, error) {
	if k == 0 {
		return nil, nil
	}
	return []byte{byte(k)}, nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}
