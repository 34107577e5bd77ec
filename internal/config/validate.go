package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStatsAPI(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStatsAPI() error {
	parsed, err := url.Parse(c.StatsAPI.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("stats_api.base_url %q is not a valid URL", c.StatsAPI.BaseURL)
	}
	if c.StatsAPI.RetryBaseMillis > c.StatsAPI.RetryMaxMillis {
		return fmt.Errorf("stats_api.retry_base_millis (%d) must not exceed retry_max_millis (%d)",
			c.StatsAPI.RetryBaseMillis, c.StatsAPI.RetryMaxMillis)
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.RelaxedMinScore > c.Matcher.MinScore {
		return fmt.Errorf("matcher.relaxed_min_score (%.2f) must not exceed min_score (%.2f)",
			c.Matcher.RelaxedMinScore, c.Matcher.MinScore)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	return nil
}
