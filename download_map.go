package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/levigross/grequests"
	"github.com/patrickmn/go-cache"

	"slidercalc/dotosu"
)

var ErrNotOsuFile = errors.New("response is not an .osu file")

type Downloader struct {
	cfg      DownloadConfig
	cacheDir string
	throttle *Throttle
	// decoded beatmaps by id
	memo *cache.Cache
}

func NewDownloader(cfg DownloadConfig, cacheDir string) *Downloader {
	return &Downloader{
		cfg:      cfg,
		cacheDir: cacheDir,
		throttle: NewThrottle(cfg.RateLimit, cfg.MaxConcurrent),
		memo:     cache.New(cfg.MemoTTL, 2*cfg.MemoTTL),
	}
}

func (d *Downloader) Close() { d.throttle.Stop() }

func (d *Downloader) cachePath(id int) string {
	return filepath.Join(d.cacheDir, fmt.Sprintf("%d.osu", id))
}

// Beatmap returns the decoded beatmap id, downloading it unless it is
// already cached in memory or on disk. The result is shared; do not modify it.
func (d *Downloader) Beatmap(ctx context.Context, id int) (*dotosu.Beatmap, error) {
	key := strconv.Itoa(id)
	if v, ok := d.memo.Get(key); ok {
		return v.(*dotosu.Beatmap), nil
	}
	if d.cacheDir != "" {
		if bm, err := dotosu.DecodeFile(d.cachePath(id)); err == nil {
			d.memo.SetDefault(key, bm)
			return bm, nil
		}
	}
	data, err := d.DownloadBeatmapBytes(ctx, id)
	if err != nil {
		return nil, err
	}
	bm, err := dotosu.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode beatmap %d: %w", id, err)
	}
	if d.cacheDir != "" {
		if err := os.MkdirAll(d.cacheDir, 0o777); err != nil {
			return nil, err
		}
		if err := os.WriteFile(d.cachePath(id), data, 0o644); err != nil {
			return nil, err
		}
	}
	d.memo.SetDefault(key, bm)
	return bm, nil
}

func (d *Downloader) DownloadBeatmapBytes(ctx context.Context, id int) ([]byte, error) {
	done := d.throttle.GetToken()
	defer done()
	if err := d.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/osu/%d", d.cfg.BaseURL, id)
	fmt.Printf("downloading beatmap %d\n", id)
	resp, err := grequests.Get(url, &grequests.RequestOptions{
		UserAgent:      d.cfg.UserAgent,
		RequestTimeout: d.cfg.Timeout,
		Context:        ctx,
		Headers:        map[string]string{"Accept": "text/plain"},
	})
	if err != nil {
		return nil, fmt.Errorf("download beatmap %d: %w", id, err)
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, fmt.Errorf("download beatmap %d: status %d", id, resp.StatusCode)
	}
	data := resp.Bytes()
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\ufeff \r\n\t"), []byte("osu file format")) {
		return nil, fmt.Errorf("beatmap %d: %w", id, ErrNotOsuFile)
	}
	return data, nil
}
