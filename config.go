package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DataDir caches downloaded .osu files.
	DataDir  string         `yaml:"data_dir"`
	DBPath   string         `yaml:"db_path"`
	WithPath bool           `yaml:"with_path"`
	Workers  int            `yaml:"workers"`
	Download DownloadConfig `yaml:"download"`
}

type DownloadConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	// RateLimit is the number of requests allowed per minute.
	RateLimit     int `yaml:"rate_limit"`
	MaxConcurrent int `yaml:"max_concurrent"`
	// MemoTTL keeps decoded beatmaps in memory for repeated ids.
	MemoTTL time.Duration `yaml:"memo_ttl"`
}

func DefaultConfig() Config {
	return Config{
		DataDir: "../_beatmaps",
		Workers: runtime.NumCPU(),
		Download: DownloadConfig{
			BaseURL:       "https://osu.ppy.sh",
			Timeout:       time.Minute,
			UserAgent:     "slidercalc",
			RateLimit:     30,
			MaxConcurrent: 2,
			MemoTTL:       10 * time.Minute,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Download.RateLimit < 1 {
		return cfg, fmt.Errorf("%s: download.rate_limit must be positive", path)
	}
	if cfg.Download.MaxConcurrent < 1 {
		cfg.Download.MaxConcurrent = 1
	}
	return cfg, nil
}
