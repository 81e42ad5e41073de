// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test
// and network settings safe for local servers. It applies any provided
// options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Source.FestivalYear = 2025
	cfgVal.Fetch.MaxAttempts = 1
	cfgVal.Fetch.PoliteDelayMinMillis = 1
	cfgVal.Fetch.PoliteDelayMaxMillis = 2
	cfgVal.IMDb.DelaySeconds = 0
	cfgVal.Trailers.DelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLineupURL points the source section at a test server.
func WithLineupURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.LineupURL = url
	}
}

// WithFestivalYear overrides the festival year on the test config.
func WithFestivalYear(year int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.FestivalYear = year
	}
}

// WithEnrichersDisabled turns off the network enrichment stages.
func WithEnrichersDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.IMDb.Enabled = false
		b.cfg.Trailers.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
