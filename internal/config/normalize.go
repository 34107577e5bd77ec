package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStatsAPI()
	c.normalizeMatcher()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStatsAPI() {
	c.StatsAPI.BaseURL = strings.TrimRight(strings.TrimSpace(c.StatsAPI.BaseURL), "/")
	if c.StatsAPI.BaseURL == "" {
		c.StatsAPI.BaseURL = defaultStatsAPIBaseURL
	}
	if c.StatsAPI.TimeoutSeconds <= 0 {
		c.StatsAPI.TimeoutSeconds = defaultStatsAPITimeout
	}
	if c.StatsAPI.MinIntervalMillis <= 0 {
		c.StatsAPI.MinIntervalMillis = defaultMinIntervalMillis
	}
	if c.StatsAPI.MaxAttempts <= 0 {
		c.StatsAPI.MaxAttempts = defaultMaxAttempts
	}
	if c.StatsAPI.RetryBaseMillis <= 0 {
		c.StatsAPI.RetryBaseMillis = defaultRetryBaseMillis
	}
	if c.StatsAPI.RetryMaxMillis <= 0 {
		c.StatsAPI.RetryMaxMillis = defaultRetryMaxMillis
	}
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.MinScore <= 0 || c.Matcher.MinScore >= 1 {
		c.Matcher.MinScore = defaultMinScore
	}
	if c.Matcher.RelaxedMinScore <= 0 || c.Matcher.RelaxedMinScore >= 1 {
		c.Matcher.RelaxedMinScore = defaultRelaxedMinScore
	}
	if c.Matcher.TemporalWindowSeconds <= 0 {
		c.Matcher.TemporalWindowSeconds = defaultTemporalWindowSecs
	}
	if c.Matcher.ContentTTLSeconds <= 0 {
		c.Matcher.ContentTTLSeconds = defaultContentTTLSeconds
	}
	if c.Matcher.ResultTTLSeconds <= 0 {
		c.Matcher.ResultTTLSeconds = defaultResultTTLSeconds
	}
	if c.Matcher.MaxContentEntries <= 0 {
		c.Matcher.MaxContentEntries = defaultMaxContentEntries
	}
	if c.Matcher.MaxResultEntries <= 0 {
		c.Matcher.MaxResultEntries = defaultMaxResultEntries
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	expanded, err := ExpandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
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
