package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"slidercalc/curves"
	"slidercalc/dotosu"
	"slidercalc/hitobject"
	"slidercalc/store"
	"slidercalc/timing"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	dbPath := flag.String("db", "", "sqlite database for resolved objects (overrides db_path)")
	withPath := flag.Bool("path", false, "also sample dense slider paths")
	dumpDir := flag.String("dump", "", "write a YAML dump per beatmap into this directory")
	ids := flag.String("ids", "", "comma separated beatmap ids to download")
	show := flag.String("show", "", "print the stored summary and slider ticks of a beatmap id")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		PanicF("config: %s", err.Error())
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *withPath {
		cfg.WithPath = true
	}

	ctx := context.Background()
	app := &App{cfg: cfg, dumpDir: *dumpDir}
	if cfg.DBPath != "" {
		app.store, err = store.Open(ctx, cfg.DBPath)
		if err != nil {
			panic(err)
		}
		defer app.store.Close()
	}

	if *show != "" {
		if app.store == nil {
			PanicF("-show needs -db or db_path")
		}
		id, err := cast.ToIntE(strings.TrimSpace(*show))
		if err != nil {
			PanicF("bad beatmap id %q: %s", *show, err.Error())
		}
		if err := ShowStored(ctx, os.Stdout, app.store, id); err != nil {
			PanicF("show beatmap %d: %s", id, err.Error())
		}
		return
	}

	wg := sync.WaitGroup{}
	for _, path := range flag.Args() {
		Run(&wg, func() {
			beatmap, err := dotosu.DecodeFile(path)
			if err != nil {
				Fail(cfg.DataDir, "_broken_files", filepath.Base(path), err.Error())
				return
			}
			app.Process(ctx, beatmap)
		})
	}

	if *ids != "" {
		dl := NewDownloader(cfg.Download, cfg.DataDir)
		defer dl.Close()
		for _, s := range strings.Split(*ids, ",") {
			id, err := cast.ToIntE(strings.TrimSpace(s))
			if err != nil {
				PanicF("bad beatmap id %q: %s", s, err.Error())
			}
			Run(&wg, func() {
				beatmap, err := dl.Beatmap(ctx, id)
				if err != nil {
					Fail(cfg.DataDir, "_download_failed", fmt.Sprint(id), err.Error())
					return
				}
				app.Process(ctx, beatmap)
			})
		}
	}
	wg.Wait()
}

type App struct {
	cfg     Config
	store   *store.Store
	dumpDir string
}

// Process resolves one beatmap, prints its summary and stores or dumps it.
func (a *App) Process(ctx context.Context, beatmap *dotosu.Beatmap) {
	name := fmt.Sprintf("%d", beatmap.Metadata.BeatmapID)
	if err := beatmap.Validate(); err != nil {
		Fail(a.cfg.DataDir, "_skips", name, err.Error())
		return
	}
	mode := hitobject.ScoreOnly
	if a.cfg.WithPath {
		mode = hitobject.WithPath
	}
	objects, err := ConvertBeatmap(beatmap, mode, a.cfg.Workers)
	if errors.Is(err, hitobject.ErrUnsupportedCurveKind) {
		Fail(a.cfg.DataDir, "_unsupported", name, err.Error())
		return
	}
	if err != nil {
		Fail(a.cfg.DataDir, "_broken_objects", name, err.Error())
		return
	}

	sum := Summarize(beatmap, objects)
	fmt.Printf(
		"%s - %s [%s]\n%d objects (%d circles, %d sliders, %d spinners)\n%.0fms\nmax combo %dx\n\n",
		beatmap.Metadata.Artist, beatmap.Metadata.Title, beatmap.Metadata.Version,
		sum.Objects, sum.Circles, sum.Sliders, sum.Spinners,
		sum.Length,
		sum.MaxCombo,
	)

	if a.store != nil {
		err := a.store.Save(ctx, store.Beatmap{
			ID:      beatmap.Metadata.BeatmapID,
			Title:   beatmap.Metadata.Title,
			Version: beatmap.Metadata.Version,
		}, objects)
		if err != nil {
			PanicF("store beatmap %s: %s", name, err.Error())
		}
	}
	if a.dumpDir != "" {
		if err := WriteDump(filepath.Join(a.dumpDir, name+".yaml"), beatmap, objects); err != nil {
			PanicF("dump beatmap %s: %s", name, err.Error())
		}
	}
}

type dumpObject struct {
	Index  int                 `yaml:"index"`
	Time   float64             `yaml:"time"`
	Type   int                 `yaml:"type"`
	Pos    curves.Vec          `yaml:"pos,flow"`
	Combo  int                 `yaml:"combo"`
	Timing *timing.Context     `yaml:"timing,omitempty"`
	Slider *hitobject.Resolved `yaml:"slider,omitempty"`
}

type dump struct {
	BeatmapID int          `yaml:"beatmap_id"`
	Title     string       `yaml:"title"`
	Version   string       `yaml:"version"`
	MaxCombo  int          `yaml:"max_combo"`
	Objects   []dumpObject `yaml:"objects"`
}

func WriteDump(path string, beatmap *dotosu.Beatmap, objects []*hitobject.HitObject) error {
	d := dump{
		BeatmapID: beatmap.Metadata.BeatmapID,
		Title:     beatmap.Metadata.Title,
		Version:   beatmap.Metadata.Version,
	}
	for i, h := range objects {
		o := dumpObject{Index: i, Time: h.Time, Type: int(h.Type), Pos: h.Pos(), Combo: h.Combo(), Slider: h.Resolved}
		if h.Slider != nil {
			o.Timing = &h.Slider.Timing
		}
		d.MaxCombo += o.Combo
		d.Objects = append(d.Objects, o)
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
