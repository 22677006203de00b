// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Engine    EngineConfig    `mapstructure:"engine"`
	API       APIConfig       `mapstructure:"api"`
	History   HistoryConfig   `mapstructure:"history"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// FeedConfig holds pool snapshot feed configuration.
type FeedConfig struct {
	HTTPURL         string        `mapstructure:"http_url"`
	WebSocketURL    string        `mapstructure:"websocket_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
}

// OracleConfig holds anchor price oracle configuration.
type OracleConfig struct {
	HTTPURL        string        `mapstructure:"http_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	StaleAfter     time.Duration `mapstructure:"stale_after"`
}

// EngineConfig holds price discovery engine tuning.
type EngineConfig struct {
	MaxHops             int           `mapstructure:"max_hops"`
	MaxPoolAge          time.Duration `mapstructure:"max_pool_age"`
	OutlierMaxDeviation float64       `mapstructure:"outlier_max_deviation"`
	MinSurvivingPaths   int           `mapstructure:"min_surviving_paths"`
	HopPenalty          float64       `mapstructure:"hop_penalty"`
	MinPathWeight       float64       `mapstructure:"min_path_weight"`
	LiquidityBoostCap   float64       `mapstructure:"liquidity_boost_cap"`
	RecencyHalfLife     time.Duration `mapstructure:"recency_half_life"`
	MinRecencyFactor    float64       `mapstructure:"min_recency_factor"`
	Parallelism         int           `mapstructure:"parallelism"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	WatchMode           bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// OutlierMaxDeviationDecimal returns the outlier fence as decimal.Decimal.
func (c *EngineConfig) OutlierMaxDeviationDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.OutlierMaxDeviation)
}

// HopPenaltyDecimal returns the per-hop weight penalty as decimal.Decimal.
func (c *EngineConfig) HopPenaltyDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.HopPenalty)
}

// APIConfig holds the HTTP API server configuration.
type APIConfig struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// HistoryConfig holds the price history store configuration.
type HistoryConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	DSN       string        `mapstructure:"dsn"`
	Retention time.Duration `mapstructure:"retention"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("PG")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "PG_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "PG_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "PG_LOG_LEVEL", "LOG_LEVEL")

	// Feed
	v.BindEnv("feed.http_url", "PG_FEED_HTTP_URL", "FEED_HTTP_URL")
	v.BindEnv("feed.websocket_url", "PG_FEED_WS_URL", "FEED_WS_URL")
	v.BindEnv("feed.refresh_interval", "PG_FEED_REFRESH_INTERVAL")

	// Oracle
	v.BindEnv("oracle.http_url", "PG_ORACLE_HTTP_URL", "ORACLE_HTTP_URL")

	// Engine
	v.BindEnv("engine.max_hops", "PG_MAX_HOPS")
	v.BindEnv("engine.max_pool_age", "PG_MAX_POOL_AGE")
	v.BindEnv("engine.parallelism", "PG_PARALLELISM")

	// API
	v.BindEnv("api.listen_addr", "PG_API_LISTEN_ADDR", "API_LISTEN_ADDR")

	// History
	v.BindEnv("history.enabled", "PG_HISTORY_ENABLED")
	v.BindEnv("history.dsn", "PG_HISTORY_DSN", "DATABASE_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "PG_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "PG_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "PG_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "pricegraph")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Feed defaults
	v.SetDefault("feed.refresh_interval", "10s")
	v.SetDefault("feed.request_timeout", "10s")
	v.SetDefault("feed.max_reconnects", 0) // infinite
	v.SetDefault("feed.initial_backoff", "1s")
	v.SetDefault("feed.max_backoff", "30s")
	v.SetDefault("feed.rate_limit_rps", 5)

	// Oracle defaults
	v.SetDefault("oracle.request_timeout", "5s")
	v.SetDefault("oracle.cache_ttl", "30s")
	v.SetDefault("oracle.stale_after", "5m")

	// Engine defaults
	v.SetDefault("engine.max_hops", 4)
	v.SetDefault("engine.max_pool_age", "5m")
	v.SetDefault("engine.outlier_max_deviation", 0.5)
	v.SetDefault("engine.min_surviving_paths", 1)
	v.SetDefault("engine.hop_penalty", 0.9)
	v.SetDefault("engine.min_path_weight", 0.01)
	v.SetDefault("engine.liquidity_boost_cap", 2.0)
	v.SetDefault("engine.recency_half_life", "60s")
	v.SetDefault("engine.min_recency_factor", 0.1)
	v.SetDefault("engine.parallelism", 8)
	v.SetDefault("engine.cache_ttl", "5s")

	// API defaults
	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.read_timeout", "10s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.allowed_origins", []string{"*"})

	// History defaults
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.retention", "720h") // 30 days

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "pricegraph")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Feed.HTTPURL == "" && c.Feed.WebSocketURL == "" {
		return fmt.Errorf("feed.http_url or feed.websocket_url is required")
	}
	if c.Engine.MaxHops < 1 {
		return fmt.Errorf("engine.max_hops must be at least 1, got %d", c.Engine.MaxHops)
	}
	if c.Engine.HopPenalty <= 0 || c.Engine.HopPenalty > 1 {
		return fmt.Errorf("engine.hop_penalty must be in (0, 1], got %f", c.Engine.HopPenalty)
	}
	if c.Engine.Parallelism < 1 {
		return fmt.Errorf("engine.parallelism must be at least 1, got %d", c.Engine.Parallelism)
	}
	if c.History.Enabled && c.History.DSN == "" {
		return fmt.Errorf("history.dsn is required when history.enabled is true")
	}
	return nil
}
