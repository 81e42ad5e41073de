package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSource()
	c.normalizeFetch()
	c.normalizeEnrichers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	c.Source.LineupURL = strings.TrimSpace(c.Source.LineupURL)
	if c.Source.FilmLinkPattern == "" {
		c.Source.FilmLinkPattern = defaultFilmLinkPattern
	}
	cleaned := c.Source.BackupURLs[:0]
	for _, raw := range c.Source.BackupURLs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	c.Source.BackupURLs = cleaned
	if c.Source.CacheMaxAgeMinutes == 0 {
		c.Source.CacheMaxAgeMinutes = defaultCacheMaxAge
	}
	if c.Source.FestivalYear == 0 {
		c.Source.FestivalYear = defaultFestivalYear
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.MaxAttempts <= 0 {
		c.Fetch.MaxAttempts = defaultMaxAttempts
	}
	if c.Fetch.BaseDelaySeconds <= 0 {
		c.Fetch.BaseDelaySeconds = defaultBaseDelaySeconds
	}
	if c.Fetch.PoliteDelayMaxMillis <= 0 {
		c.Fetch.PoliteDelayMinMillis = defaultPoliteDelayMinMillis
		c.Fetch.PoliteDelayMaxMillis = defaultPoliteDelayMaxMillis
	}
	if c.Fetch.RateLimitDelayMaxSecs <= 0 {
		c.Fetch.RateLimitDelayMinSecs = defaultRateLimitDelayMinSecs
		c.Fetch.RateLimitDelayMaxSecs = defaultRateLimitDelayMaxSecs
	}
	if c.Fetch.PrimaryTimeoutSeconds <= 0 {
		c.Fetch.PrimaryTimeoutSeconds = defaultPrimaryTimeoutSecs
	}
	if c.Fetch.LookupTimeoutSeconds <= 0 {
		c.Fetch.LookupTimeoutSeconds = defaultLookupTimeoutSecs
	}
}

func (c *Config) normalizeEnrichers() {
	c.IMDb.BaseURL = strings.TrimRight(strings.TrimSpace(c.IMDb.BaseURL), "/")
	if c.IMDb.BaseURL == "" {
		c.IMDb.BaseURL = defaultIMDbBaseURL
	}
	if c.IMDb.DelaySeconds < 0 {
		c.IMDb.DelaySeconds = defaultIMDbDelaySeconds
	}
	c.Trailers.BaseURL = strings.TrimRight(strings.TrimSpace(c.Trailers.BaseURL), "/")
	if c.Trailers.BaseURL == "" {
		c.Trailers.BaseURL = defaultTrailerBaseURL
	}
	if c.Trailers.DelaySeconds < 0 {
		c.Trailers.DelaySeconds = defaultTrailerDelaySeconds
	}
	c.Letterboxd.Username = strings.TrimSpace(c.Letterboxd.Username)
	c.Letterboxd.BaseURL = strings.TrimRight(strings.TrimSpace(c.Letterboxd.BaseURL), "/")
	if c.Letterboxd.BaseURL == "" {
		c.Letterboxd.BaseURL = defaultLetterboxdBaseURL
	}
	if c.Letterboxd.MaxProfilePages <= 0 {
		c.Letterboxd.MaxProfilePages = defaultMaxProfilePages
	}
	if c.Letterboxd.MaxRecommendations <= 0 {
		c.Letterboxd.MaxRecommendations = defaultMaxRecommendations
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
