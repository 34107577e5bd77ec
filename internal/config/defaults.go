package config

const (
	defaultLogDir   = "~/.local/share/dinger/logs"
	defaultStateDir = "~/.local/share/dinger"
	defaultAPIBind  = "127.0.0.1:7643"

	defaultStatsAPIBaseURL   = "https://statsapi.mlb.com/api/v1"
	defaultStatsAPITimeout   = 10
	defaultMinIntervalMillis = 1000
	defaultMaxAttempts       = 3
	defaultRetryBaseMillis   = 500
	defaultRetryMaxMillis    = 8000

	defaultMinScore           = 0.4
	defaultRelaxedMinScore    = 0.25
	defaultTemporalWindowSecs = 90
	defaultContentTTLSeconds  = 300
	defaultResultTTLSeconds   = 3600
	defaultMaxContentEntries  = 20
	defaultMaxResultEntries   = 100

	defaultHistoryPath        = "~/.local/share/dinger/history.db"
	defaultNtfyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
			APIBind:  defaultAPIBind,
		},
		StatsAPI: StatsAPI{
			BaseURL:           defaultStatsAPIBaseURL,
			TimeoutSeconds:    defaultStatsAPITimeout,
			MinIntervalMillis: defaultMinIntervalMillis,
			MaxAttempts:       defaultMaxAttempts,
			RetryBaseMillis:   defaultRetryBaseMillis,
			RetryMaxMillis:    defaultRetryMaxMillis,
		},
		Matcher: Matcher{
			MinScore:              defaultMinScore,
			RelaxedMinScore:       defaultRelaxedMinScore,
			TemporalWindowSeconds: defaultTemporalWindowSecs,
			ContentTTLSeconds:     defaultContentTTLSeconds,
			ResultTTLSeconds:      defaultResultTTLSeconds,
			MaxContentEntries:     defaultMaxContentEntries,
			MaxResultEntries:      defaultMaxResultEntries,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
