// Package config defines engine configuration and its loading hooks.
//
// Conventions follow the rest of the repo: defaults come from New,
// Load layers an optional YAML file and NEXUS_-prefixed env vars on
// top, and external errors are wrapped via this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SourceBaseURL is the root of the paginated JSON dataset.
	SourceBaseURL string `koanf:"source_base_url"`

	// WorkerCount bounds concurrent in-flight page fetches.
	WorkerCount int `koanf:"worker_count"`

	// MaxRetries bounds fetch attempts per page (first try included).
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseMS is the initial backoff delay in milliseconds.
	RetryBaseMS int `koanf:"retry_base_ms"`

	// RequestTimeoutMS bounds a single page request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RateLimitRPS caps outbound requests per second.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`

	// CompetitorPages fixes the competitor collection's page count.
	// Zero means walk pages sequentially until the source answers
	// not-found.
	CompetitorPages int `koanf:"competitor_pages"`

	// CachePath locates the binary snapshot file.
	CachePath string `koanf:"cache_path"`

	// CacheTTLHours is the cache freshness window.
	CacheTTLHours int `koanf:"cache_ttl_hours"`

	// MaxSearchResults caps name-search answers.
	MaxSearchResults int `koanf:"max_search_results"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9090",
		SourceBaseURL:    "https://raw.githubusercontent.com/robiningelbrecht/wca-rest-api/master/api",
		WorkerCount:      16,
		MaxRetries:       5,
		RetryBaseMS:      500,
		RequestTimeoutMS: 30_000,
		RateLimitRPS:     40,
		CompetitorPages:  268,
		CachePath:        "nexus_snapshot.msgpack",
		CacheTTLHours:    24,
		MaxSearchResults: 50,
	}
}
