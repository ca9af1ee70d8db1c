// Package store keeps resolved beatmaps in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"slidercalc/curves"
	"slidercalc/hitobject"
)

var (
	ErrNotFound  = errors.New("beatmap not stored")
	ErrNotSlider = errors.New("object is not a slider")
)

const schema = `
CREATE TABLE IF NOT EXISTS beatmaps (
	id        INTEGER PRIMARY KEY,
	title     TEXT NOT NULL,
	version   TEXT NOT NULL,
	objects   INTEGER NOT NULL,
	sliders   INTEGER NOT NULL,
	max_combo INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS objects (
	beatmap_id INTEGER NOT NULL,
	idx        INTEGER NOT NULL,
	time       REAL NOT NULL,
	type       INTEGER NOT NULL,
	kind       TEXT,
	repeat     INTEGER,
	duration   REAL,
	end_time   REAL NOT NULL,
	end_x      REAL,
	end_y      REAL,
	combo      INTEGER NOT NULL,
	PRIMARY KEY (beatmap_id, idx)
);
CREATE TABLE IF NOT EXISTS ticks (
	beatmap_id INTEGER NOT NULL,
	idx        INTEGER NOT NULL,
	n          INTEGER NOT NULL,
	x          REAL NOT NULL,
	y          REAL NOT NULL,
	time       REAL NOT NULL,
	PRIMARY KEY (beatmap_id, idx, n)
);`

// Beatmap identifies what the objects belong to.
type Beatmap struct {
	ID      int
	Title   string
	Version string
}

type Summary struct {
	Beatmap
	Objects  int
	Sliders  int
	MaxCombo int
}

type Store struct {
	db *sql.DB
}

// Open opens (and creates) the database at path; ":memory:" works for
// throwaway stores.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// sqlite serialises writers; one connection also keeps :memory: shared
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save replaces everything stored for b with objects.
func (s *Store) Save(ctx context.Context, b Beatmap, objects []*hitobject.HitObject) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"ticks", "objects"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE beatmap_id = ?", b.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	objStmt, err := tx.PrepareContext(ctx, `INSERT INTO objects
		(beatmap_id, idx, time, type, kind, repeat, duration, end_time, end_x, end_y, combo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer objStmt.Close()
	tickStmt, err := tx.PrepareContext(ctx, `INSERT INTO ticks (beatmap_id, idx, n, x, y, time) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tickStmt.Close()

	sliders, maxCombo := 0, 0
	for i, h := range objects {
		combo := h.Combo()
		maxCombo += combo
		var kind, repeat, duration, endX, endY any
		if r := h.Resolved; r != nil {
			sliders++
			kind, repeat, duration = r.Kind.String(), h.Slider.Repeat, r.Duration
			endX, endY = r.End.Pos.X, r.End.Pos.Y
			for n, tick := range r.Ticks {
				if _, err = tickStmt.ExecContext(ctx, b.ID, i, n, tick.Pos.X, tick.Pos.Y, tick.Time); err != nil {
					return fmt.Errorf("insert tick %d/%d: %w", i, n, err)
				}
			}
		}
		if _, err = objStmt.ExecContext(ctx, b.ID, i, h.Time, int(h.Type), kind, repeat, duration,
			h.EndTime(), endX, endY, combo); err != nil {
			return fmt.Errorf("insert object %d: %w", i, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO beatmaps (id, title, version, objects, sliders, max_combo)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, version = excluded.version,
			objects = excluded.objects, sliders = excluded.sliders, max_combo = excluded.max_combo`,
		b.ID, b.Title, b.Version, len(objects), sliders, maxCombo); err != nil {
		return fmt.Errorf("upsert beatmap %d: %w", b.ID, err)
	}
	return tx.Commit()
}

func (s *Store) Summary(ctx context.Context, id int) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, version, objects, sliders, max_combo FROM beatmaps WHERE id = ?`, id).
		Scan(&sum.ID, &sum.Title, &sum.Version, &sum.Objects, &sum.Sliders, &sum.MaxCombo)
	if errors.Is(err, sql.ErrNoRows) {
		return sum, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return sum, err
}

// Ticks returns the stored ticks of object idx in order.
func (s *Store) Ticks(ctx context.Context, id, idx int) ([]hitobject.SliderTick, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT x, y, time FROM ticks WHERE beatmap_id = ? AND idx = ? ORDER BY n`, id, idx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ticks []hitobject.SliderTick
	for rows.Next() {
		var tick hitobject.SliderTick
		if err := rows.Scan(&tick.Pos.X, &tick.Pos.Y, &tick.Time); err != nil {
			return nil, err
		}
		ticks = append(ticks, tick)
	}
	return ticks, rows.Err()
}

// SliderEnd returns the stored end tick of object idx.
func (s *Store) SliderEnd(ctx context.Context, id, idx int) (hitobject.SliderTick, error) {
	var (
		x, y sql.NullFloat64
		end  float64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT end_x, end_y, end_time FROM objects WHERE beatmap_id = ? AND idx = ?`, id, idx).
		Scan(&x, &y, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return hitobject.SliderTick{}, fmt.Errorf("%w: %d/%d", ErrNotFound, id, idx)
	}
	if err != nil {
		return hitobject.SliderTick{}, err
	}
	if !x.Valid || !y.Valid {
		return hitobject.SliderTick{}, fmt.Errorf("%w: %d/%d", ErrNotSlider, id, idx)
	}
	return hitobject.SliderTick{Pos: curves.V(x.Float64, y.Float64), Time: end}, nil
}
