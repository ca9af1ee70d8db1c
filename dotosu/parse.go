package dotosu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const EARLY_VERSION_TIMING_OFFSET = 24

type section int

const (
	secNone section = iota
	secGeneral
	secMetadata
	secDifficulty
	secTimingPoints
	secHitObjects
)

type Beatmap struct {
	FormatVersion int
	General       General
	Metadata      Metadata
	Difficulty    Difficulty

	TimingPoints []TimingPoint
	HitObjects   []HitObject
}

type General struct {
	// Mode 0 is osu!standard.
	Mode int
}

type Metadata struct {
	Title, Artist, Version string
	BeatmapID              int
}

// Difficulty holds the settings that shape sliders.
type Difficulty struct {
	SliderMultiplier, SliderTickRate float64
}

type TimingPoint struct {
	Time        float64
	BeatLength  float64
	Uninherited bool
}

type HitObjectTypeFlags int

const (
	TypeCircle     HitObjectTypeFlags = 1 << iota // 1
	TypeSlider                                    // 2
	TypeNewCombo                                  // 4
	TypeSpinner                                   // 8
)

type Vec2 struct{ X, Y int }

// HitObject is one [HitObjects] line. Curve fields are only set for sliders,
// EndTime only for spinners.
type HitObject struct {
	Pos  Vec2
	Time int
	Type HitObjectTypeFlags

	// CurveType is the path letter as written (L, P, B or C).
	CurveType string
	// CurvePoints excludes the slider head.
	CurvePoints []Vec2
	Slides      int
	Length      float64

	EndTime int
}

func (h HitObject) IsSlider() bool  { return h.Type&TypeSlider != 0 }
func (h HitObject) IsSpinner() bool { return h.Type&TypeSpinner != 0 }

// ---------- Public API ----------

func DecodeFile(path string) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Beatmap, error) {
	sc := bufio.NewScanner(r)
	const maxLine = 1024 * 1024
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, maxLine)

	var header string
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		header = line
		break
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(header), "osu file format v") {
		return nil, fmt.Errorf("invalid .osu header: %q", header)
	}
	versionStr := strings.TrimSpace(header[len("osu file format v"):])
	formatVersion, err := strconv.Atoi(versionStr)
	if err != nil {
		return nil, fmt.Errorf("invalid .osu version in header: %q: %w", header, err)
	}

	b := &Beatmap{
		FormatVersion: formatVersion,
		Difficulty:    Difficulty{SliderMultiplier: 1.4, SliderTickRate: 1},
	}

	offset := 0
	if formatVersion < 5 {
		offset = EARLY_VERSION_TIMING_OFFSET
	}

	sec := secNone
	lineNo := 1

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			switch strings.ToLower(line) {
			case "[general]":
				sec = secGeneral
			case "[metadata]":
				sec = secMetadata
			case "[difficulty]":
				sec = secDifficulty
			case "[timingpoints]":
				sec = secTimingPoints
			case "[hitobjects]":
				sec = secHitObjects
			default:
				sec = secNone
			}
			continue
		}

		switch sec {
		case secGeneral:
			k, v := splitKeyVal(line)
			if strings.EqualFold(k, "mode") {
				b.General.Mode = parseInt(v, 0)
			}

		case secMetadata:
			k, v := splitKeyVal(line)
			switch strings.ToLower(k) {
			case "title":
				b.Metadata.Title = v
			case "artist":
				b.Metadata.Artist = v
			case "version":
				b.Metadata.Version = v
			case "beatmapid":
				b.Metadata.BeatmapID = parseInt(v, 0)
			}

		case secDifficulty:
			k, v := splitKeyVal(line)
			switch strings.ToLower(k) {
			case "slidermultiplier":
				b.Difficulty.SliderMultiplier = parseFloat(v, 1.4)
			case "slidertickrate":
				b.Difficulty.SliderTickRate = parseFloat(v, 1)
			}

		case secTimingPoints:
			parts := splitCSV(line)
			if len(parts) < 2 {
				continue
			}
			// files before v6 only have red lines, written as time,beatLength
			tp := TimingPoint{
				Time:        parseFloat(parts[0], 0) + float64(offset),
				BeatLength:  parseFloatAllowNaN(parts[1]),
				Uninherited: true,
			}
			if len(parts) >= 7 {
				tp.Uninherited = parts[6] == "1"
			}
			b.TimingPoints = append(b.TimingPoints, tp)

		case secHitObjects:
			h, err := parseHitObject(line, offset)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			b.HitObjects = append(b.HitObjects, h)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	b.Difficulty.SliderMultiplier = clampFloat(b.Difficulty.SliderMultiplier, 0.4, 3.6)
	b.Difficulty.SliderTickRate = clampFloat(b.Difficulty.SliderTickRate, 0.5, 8.0)
	return b, nil
}

var ErrShortHitObject = errors.New("hit object needs x,y,time,type,hitSound")

// parseHitObject reads x,y,time,type,hitSound[,objectParams...].
// Slider params: curveType|x:y|..., slides, length.
func parseHitObject(line string, offset int) (HitObject, error) {
	parts := splitCSV(line)
	if len(parts) < 5 {
		return HitObject{}, fmt.Errorf("%w: %q", ErrShortHitObject, line)
	}
	h := HitObject{
		Pos:  Vec2{X: int(parseFloat(parts[0], 0)), Y: int(parseFloat(parts[1], 0))},
		Time: int(parseFloat(parts[2], 0)) + offset,
		Type: HitObjectTypeFlags(parseInt(parts[3], 0)),
	}

	switch {
	case h.Type&TypeSpinner != 0:
		if len(parts) >= 6 {
			h.EndTime = parseInt(parts[5], 0) + offset
		}

	case h.Type&TypeSlider != 0:
		if len(parts) < 8 {
			return HitObject{}, fmt.Errorf("slider needs curve, slides and length: %q", line)
		}
		h.CurveType, h.CurvePoints = parseCurve(h.Pos, parts[5])
		h.Slides = max(parseInt(parts[6], 1), 1)
		h.Length = parseFloat(parts[7], 0)
	}
	return h, nil
}

// parseCurve splits "B|x:y|x:y|..." into its letter and control points.
// Points that fail to parse fall back to the head coordinate.
func parseCurve(head Vec2, field string) (string, []Vec2) {
	typ, rest, _ := strings.Cut(strings.TrimSpace(field), "|")
	var cps []Vec2
	if strings.TrimSpace(rest) == "" {
		return strings.TrimSpace(typ), cps
	}
	for _, t := range strings.Split(rest, "|") {
		xs, ys, ok := strings.Cut(strings.TrimSpace(t), ":")
		if !ok {
			continue
		}
		cps = append(cps, Vec2{
			X: int(parseFloat(xs, float64(head.X))),
			Y: int(parseFloat(ys, float64(head.Y))),
		})
	}
	return strings.TrimSpace(typ), cps
}

// ---------- parsing helpers ----------

func splitKeyVal(line string) (key, val string) {
	k, v, ok := strings.Cut(line, ":")
	if !ok {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(k), strings.TrimSpace(v)
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func parseFloatAllowNaN(s string) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return math.NaN()
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func splitCSV(line string) []string {
	var out []string
	var cur strings.Builder
	inQ := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQ = !inQ
		case c == ',' && !inQ:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(out, strings.TrimSpace(cur.String()))
}

// ---------- optional validation ----------

func (b *Beatmap) Validate() error {
	if b.Metadata.Title == "" {
		return errors.New("missing title")
	}
	if b.General.Mode != 0 {
		return fmt.Errorf("mode %d is not osu!standard", b.General.Mode)
	}
	if len(b.TimingPoints) == 0 {
		return errors.New("missing [TimingPoints]")
	}
	return nil
}
