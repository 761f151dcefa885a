package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendS3     = "s3"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	SourcePath = "path"
	SourceFeed = "feed"
)

type Config struct {
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`

	StoreBackend    string `env:"STORE_BACKEND"     envDefault:"s3"`
	CacheBucket     string `env:"CACHE_BUCKET"      envDefault:"path-summarize-data"`
	RateLimitBucket string `env:"RATE_LIMIT_BUCKET" envDefault:"path-summarize-data-rate-limit"`
	SQLitePath      string `env:"SQLITE_PATH"       envDefault:"db.sqlite"`
	MemoryEntries   int    `env:"MEMORY_ENTRIES"    envDefault:"10000"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"30s"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT"  envDefault:"25s"`
	ShadowTimeout   time.Duration `env:"SHADOW_TIMEOUT"    envDefault:"60s"`

	SkipCacheMagicWord string `env:"SKIP_CACHE_MAGIC_WORD"`
	ProfilePath        string `env:"PROFILE_PATH"`

	ListenAddr    string `env:"LISTEN_ADDR"    envDefault:":8080"`
	LogLevel      string `env:"LOG_LEVEL"      envDefault:"info"`
	TraceExporter string `env:"TRACE_EXPORTER" envDefault:"none"`

	PrewarmSpec        string `env:"PREWARM_SPEC"`
	PrewarmSource      string `env:"PREWARM_SOURCE"      envDefault:"path"`
	PrewarmURL         string `env:"PREWARM_URL"`
	PrewarmConcurrency int    `env:"PREWARM_CONCURRENCY" envDefault:"4"`
	PathAppAPIKey      string `env:"PATH_APP_API_KEY"`

	LifecycleSpec   string        `env:"LIFECYCLE_SPEC"`
	MarkerRetention time.Duration `env:"MARKER_RETENTION" envDefault:"24h"`
}

// Parse reads the configuration from the environment and validates it.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendS3, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (valid = s3, sqlite, memory)", c.StoreBackend)
	}

	switch c.PrewarmSource {
	case SourcePath, SourceFeed:
	default:
		return fmt.Errorf("invalid PREWARM_SOURCE %q (valid = path, feed)", c.PrewarmSource)
	}

	if c.PrewarmSpec != "" && c.PrewarmSource == SourceFeed && c.PrewarmURL == "" {
		return fmt.Errorf("PREWARM_URL is required when PREWARM_SOURCE is %q", SourceFeed)
	}

	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive (got %s)", c.RateLimitWindow)
	}

	if c.MarkerRetention < c.RateLimitWindow {
		return fmt.Errorf("MARKER_RETENTION %s must not be shorter than RATE_LIMIT_WINDOW %s",
			c.MarkerRetention, c.RateLimitWindow)
	}

	return nil
}
