package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"weights off", func(c *Config) { c.Scoring.Weights.Freshness = 0.5 }},
		{"zero tau", func(c *Config) { c.Scoring.TauHours = 0 }},
		{"inverted cutoffs", func(c *Config) { c.Scoring.WatchCutoff = 80 }},
		{"risk penalty zero", func(c *Config) { c.Scoring.RiskPenalty = 0 }},
		{"risk penalty above one", func(c *Config) { c.Scoring.RiskPenalty = 1.5 }},
		{"no novelty capacity", func(c *Config) { c.Scoring.NoveltyCapacity = 0 }},
		{"no workers", func(c *Config) { c.Signals.Workers = 0 }},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  path: /tmp/test.db
scoring:
  post_cutoff: 80
  watch_cutoff: 60
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Fatalf("db path = %q", cfg.Database.Path)
	}
	if cfg.Scoring.PostCutoff != 80 || cfg.Scoring.WatchCutoff != 60 {
		t.Fatalf("cutoffs = %.0f/%.0f, want 80/60", cfg.Scoring.PostCutoff, cfg.Scoring.WatchCutoff)
	}
	// Untouched sections keep their defaults.
	if cfg.Scoring.TauHours != 6 {
		t.Fatalf("tau = %v, want default 6", cfg.Scoring.TauHours)
	}
	if len(cfg.Feeds.Feeds) == 0 {
		t.Fatalf("default feed list lost on load")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEWSRADAR_DB_PATH", "/tmp/env.db")
	t.Setenv("NEWSRADAR_ENGAGEMENT_URL", "http://localhost:9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Fatalf("db path = %q, want env override", cfg.Database.Path)
	}
	if !cfg.Signals.Engagement.Enabled || cfg.Signals.Engagement.BaseURL != "http://localhost:9999" {
		t.Fatalf("engagement env override not applied: %+v", cfg.Signals.Engagement)
	}
}

func TestParseWindow(t *testing.T) {
	t.Parallel()

	f := FeedsConfig{Window: "12h"}
	if got := f.ParseWindow(); got != 12*time.Hour {
		t.Fatalf("window = %v, want 12h", got)
	}
	f.Window = "garbage"
	if got := f.ParseWindow(); got != 6*time.Hour {
		t.Fatalf("fallback window = %v, want 6h", got)
	}
}
