package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.LineupURL == "" {
		return errors.New("source.lineup_url must be set")
	}
	if err := validateURL("source.lineup_url", c.Source.LineupURL); err != nil {
		return err
	}
	for _, backup := range c.Source.BackupURLs {
		if err := validateURL("source.backup_urls", backup); err != nil {
			return err
		}
	}
	if c.Source.CacheMaxAgeMinutes < 0 {
		return errors.New("source.cache_max_age_minutes must not be negative")
	}
	if c.Source.FestivalYear < 1000 || c.Source.FestivalYear > 9999 {
		return fmt.Errorf("source.festival_year must be a 4-digit year, got %d", c.Source.FestivalYear)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.MaxAttempts < 1 {
		return errors.New("fetch.max_attempts must be at least 1")
	}
	if c.Fetch.PoliteDelayMinMillis > c.Fetch.PoliteDelayMaxMillis {
		return errors.New("fetch.polite_delay_min_millis must not exceed fetch.polite_delay_max_millis")
	}
	if c.Fetch.RateLimitDelayMinSecs > c.Fetch.RateLimitDelayMaxSecs {
		return errors.New("fetch.rate_limit_delay_min_seconds must not exceed fetch.rate_limit_delay_max_seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func validateURL(field, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL %q: %w", field, raw, err)
	}
	if !strings.HasPrefix(parsed.Scheme, "http") || parsed.Host == "" {
		return fmt.Errorf("%s: %q must be an absolute http(s) URL", field, raw)
	}
	return nil
}
