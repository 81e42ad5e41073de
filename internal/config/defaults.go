package config

const (
	defaultCacheDir  = "~/.cache/marquee"
	defaultOutputDir = "."
	defaultLogDir    = "~/.local/share/marquee/logs"
	defaultStateDir  = "~/.local/share/marquee"

	defaultLineupURL       = "https://www.filmlinc.org/nyff/nyff63-lineup/"
	defaultFilmLinkPattern = "/films/"
	defaultCacheMaxAge     = 45
	defaultFestivalYear    = 2025

	defaultMaxAttempts           = 3
	defaultBaseDelaySeconds      = 2
	defaultPoliteDelayMinMillis  = 1000
	defaultPoliteDelayMaxMillis  = 2000
	defaultRateLimitDelayMinSecs = 5
	defaultRateLimitDelayMaxSecs = 20
	defaultPrimaryTimeoutSecs    = 30
	defaultLookupTimeoutSecs     = 10

	defaultIMDbBaseURL      = "https://www.imdb.com"
	defaultIMDbDelaySeconds = 1

	defaultTrailerBaseURL      = "https://www.youtube.com"
	defaultTrailerDelaySeconds = 2

	defaultLetterboxdBaseURL   = "https://letterboxd.com"
	defaultMaxProfilePages     = 5
	defaultMaxRecommendations  = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// defaultBackupURLs are archived lineup snapshots tried in order when
// the live page cannot be fetched.
var defaultBackupURLs = []string{
	"https://web.archive.org/web/2025/https://www.filmlinc.org/nyff/nyff63-lineup/",
	"https://web.archive.org/web/2024/https://www.filmlinc.org/nyff/nyff63-lineup/",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:  defaultCacheDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Source: Source{
			LineupURL:          defaultLineupURL,
			BackupURLs:         append([]string{}, defaultBackupURLs...),
			FilmLinkPattern:    defaultFilmLinkPattern,
			CacheMaxAgeMinutes: defaultCacheMaxAge,
			FestivalYear:       defaultFestivalYear,
		},
		Fetch: Fetch{
			MaxAttempts:           defaultMaxAttempts,
			BaseDelaySeconds:      defaultBaseDelaySeconds,
			PoliteDelayMinMillis:  defaultPoliteDelayMinMillis,
			PoliteDelayMaxMillis:  defaultPoliteDelayMaxMillis,
			RateLimitDelayMinSecs: defaultRateLimitDelayMinSecs,
			RateLimitDelayMaxSecs: defaultRateLimitDelayMaxSecs,
			PrimaryTimeoutSeconds: defaultPrimaryTimeoutSecs,
			LookupTimeoutSeconds:  defaultLookupTimeoutSecs,
		},
		IMDb: IMDb{
			Enabled:      true,
			BaseURL:      defaultIMDbBaseURL,
			DelaySeconds: defaultIMDbDelaySeconds,
		},
		Trailers: Trailers{
			Enabled:      true,
			BaseURL:      defaultTrailerBaseURL,
			DelaySeconds: defaultTrailerDelaySeconds,
		},
		Letterboxd: Letterboxd{
			BaseURL:            defaultLetterboxdBaseURL,
			MaxProfilePages:    defaultMaxProfilePages,
			MaxRecommendations: defaultMaxRecommendations,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
