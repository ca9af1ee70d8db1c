package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/osu/9":
			w.Write([]byte(testBeatmap))
		case "/osu/10":
			w.Write([]byte("<html>Slow down, play more.</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testDownloader(t *testing.T, baseURL string) *Downloader {
	t.Helper()
	dl := NewDownloader(DownloadConfig{
		BaseURL:       baseURL,
		Timeout:       5 * time.Second,
		UserAgent:     "test",
		RateLimit:     6000,
		MaxConcurrent: 2,
		MemoTTL:       time.Minute,
	}, t.TempDir())
	t.Cleanup(dl.Close)
	return dl
}

func TestDownloadAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := testServer(t, &hits)
	dl := testDownloader(t, srv.URL)

	ctx := context.Background()
	b, err := dl.Beatmap(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Test", b.Metadata.Title)
	assert.FileExists(t, filepath.Join(dl.cacheDir, "9.osu"))

	again, err := dl.Beatmap(ctx, 9)
	require.NoError(t, err)
	assert.Same(t, b, again)
	assert.Equal(t, int32(1), hits.Load(), "second call is served from memory")

	// a fresh downloader over the same directory reads the file instead
	disk := NewDownloader(dl.cfg, dl.cacheDir)
	defer disk.Close()
	b, err = disk.Beatmap(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, b.Metadata.BeatmapID)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDownloadErrors(t *testing.T) {
	var hits atomic.Int32
	srv := testServer(t, &hits)
	dl := testDownloader(t, srv.URL)

	ctx := context.Background()
	_, err := dl.Beatmap(ctx, 404)
	assert.Error(t, err)

	_, err = dl.Beatmap(ctx, 10)
	assert.ErrorIs(t, err, ErrNotOsuFile)
	_, statErr := os.Stat(filepath.Join(dl.cacheDir, "10.osu"))
	assert.True(t, os.IsNotExist(statErr))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = dl.DownloadBeatmapBytes(cancelled, 9)
	assert.ErrorIs(t, err, context.Canceled)
}
