package config

const (
	defaultConfigPath           = "~/.config/filmtrack/config.toml"
	projectConfigFile           = "filmtrack.toml"
	defaultTMDBLanguage         = "zh-CN"
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL     = "https://image.tmdb.org/t/p"
	defaultTMDBTimeoutSeconds   = 10
	defaultRequestIntervalMS    = 200
	defaultAcceptThreshold      = 0.8
	defaultFallbackThreshold    = 0.3
	defaultMaxStrategies        = 8
	defaultImageLimit           = 5
	defaultImageLanguages       = "zh,en,null"
	defaultCacheBackend         = "sqlite"
	defaultCacheNamespace       = "filmtrack-tmdb"
	defaultCacheExpirationHours = 24
	defaultCacheMaxItems        = 200
	defaultCacheMaxBytes        = 2 << 20
	defaultEmergencyKeepMinutes = 60
	defaultRedisAddr            = "127.0.0.1:6379"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			ImageBaseURL:   defaultTMDBImageBaseURL,
			Language:       defaultTMDBLanguage,
			TimeoutSeconds: defaultTMDBTimeoutSeconds,
		},
		Queue: Queue{
			RequestIntervalMS: defaultRequestIntervalMS,
		},
		Search: Search{
			AcceptThreshold:      defaultAcceptThreshold,
			FallbackThreshold:    defaultFallbackThreshold,
			MaxStrategies:        defaultMaxStrategies,
			ImageLimit:           defaultImageLimit,
			IncludeImageLanguage: defaultImageLanguages,
		},
		Cache: Cache{
			Enabled:              true,
			Backend:              defaultCacheBackend,
			Namespace:            defaultCacheNamespace,
			ExpirationHours:      defaultCacheExpirationHours,
			MaxItems:             defaultCacheMaxItems,
			MaxBytes:             defaultCacheMaxBytes,
			EmergencyKeepMinutes: defaultEmergencyKeepMinutes,
		},
		Redis: Redis{
			Addr: defaultRedisAddr,
		},
		Logging: Logging{
			Format:      defaultLogFormat,
			Level:       defaultLogLevel,
			OutputPaths: []string{"stderr"},
		},
	}
}
