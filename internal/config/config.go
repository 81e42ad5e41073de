package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir  string `toml:"cache_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Source contains configuration for the festival lineup page.
type Source struct {
	LineupURL          string   `toml:"lineup_url"`
	BackupURLs         []string `toml:"backup_urls"`
	FilmLinkPattern    string   `toml:"film_link_pattern"`
	CacheMaxAgeMinutes int      `toml:"cache_max_age_minutes"`
	FestivalYear       int      `toml:"festival_year"`
}

// Fetch contains network politeness and retry settings. Delays are
// deliberate throughput throttles, not incidental; lowering them risks
// tripping the origin's bot defenses.
type Fetch struct {
	MaxAttempts            int `toml:"max_attempts"`
	BaseDelaySeconds       int `toml:"base_delay_seconds"`
	PoliteDelayMinMillis   int `toml:"polite_delay_min_millis"`
	PoliteDelayMaxMillis   int `toml:"polite_delay_max_millis"`
	RateLimitDelayMinSecs  int `toml:"rate_limit_delay_min_seconds"`
	RateLimitDelayMaxSecs  int `toml:"rate_limit_delay_max_seconds"`
	PrimaryTimeoutSeconds  int `toml:"primary_timeout_seconds"`
	LookupTimeoutSeconds   int `toml:"lookup_timeout_seconds"`
}

// IMDb contains configuration for the reference-database enricher.
type IMDb struct {
	Enabled      bool   `toml:"enabled"`
	BaseURL      string `toml:"base_url"`
	DelaySeconds int    `toml:"delay_seconds"`
}

// Trailers contains configuration for the trailer enricher.
type Trailers struct {
	Enabled      bool   `toml:"enabled"`
	BaseURL      string `toml:"base_url"`
	DelaySeconds int    `toml:"delay_seconds"`
}

// Letterboxd contains configuration for the experimental recommender.
type Letterboxd struct {
	Username           string `toml:"username"`
	BaseURL            string `toml:"base_url"`
	MaxProfilePages    int    `toml:"max_profile_pages"`
	MaxRecommendations int    `toml:"max_recommendations"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marquee.
//
// Sections by subsystem:
//   - Paths: cache, output, log, and state directories
//   - Source: lineup page URL, archive fallbacks, staleness window
//   - Fetch: retry, backoff, and politeness settings
//   - IMDb: reference-database enrichment
//   - Trailers: trailer search enrichment
//   - Letterboxd: experimental recommendations
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Source     Source     `toml:"source"`
	Fetch      Fetch      `toml:"fetch"`
	IMDb       IMDb       `toml:"imdb"`
	Trailers   Trailers   `toml:"trailers"`
	Letterboxd Letterboxd `toml:"letterboxd"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean
// reports whether a config file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
