package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Document source API
	SourceBaseURL string        `envconfig:"SOURCE_BASE_URL" default:"http://localhost:8100/api"`
	SourceAPIKey  string        `envconfig:"SOURCE_API_KEY" default:""`
	SourceTimeout time.Duration `envconfig:"SOURCE_TIMEOUT" default:"30s"`

	// Database (optional; ranking snapshots are only persisted when enabled)
	DatabaseEnabled  bool   `envconfig:"DATABASE_ENABLED" default:"false"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"bcr"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"bcr_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Computation
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"8"`
	UpcomingLimit    int           `envconfig:"UPCOMING_LIMIT" default:"3"`

	// Scheduler
	EnableScheduler    bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialWarmEnabled bool          `envconfig:"INITIAL_WARM_ENABLED" default:"true"`
	NightlyRefreshCron string        `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`
	RefreshInterval    time.Duration `envconfig:"REFRESH_INTERVAL" default:"30m"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SourceBaseURL == "" {
		return fmt.Errorf("SOURCE_BASE_URL is required")
	}

	if c.DatabaseEnabled && c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required when DATABASE_ENABLED is set")
	}

	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
