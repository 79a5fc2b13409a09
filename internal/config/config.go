// Package config loads application configuration from file and
// environment, and carries every scoring/risk threshold table as data so
// constants live in one place rather than scattered through logic.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	MarketData MarketDataConfig `yaml:"market_data" mapstructure:"market_data"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Judgment   JudgmentConfig   `yaml:"judgment" mapstructure:"judgment"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Risk       RiskConfig       `yaml:"risk" mapstructure:"risk"`
	Screen     ScreenConfig     `yaml:"screen" mapstructure:"screen"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the report persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// MarketDataConfig configures the statement/quote provider client.
type MarketDataConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// AnthropicConfig holds Anthropic API settings for the judgment provider.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// JudgmentConfig bounds the external qualitative-judgment signal. The
// upstream provider enforces a requests-per-minute ceiling, so calls are
// spaced globally and failures fall back to a neutral verdict.
type JudgmentConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	MaxAttempts       int     `yaml:"max_attempts" mapstructure:"max_attempts"`

	StrongPassCap  float64 `yaml:"strong_pass_cap" mapstructure:"strong_pass_cap"`
	SoftPassCap    float64 `yaml:"soft_pass_cap" mapstructure:"soft_pass_cap"`
	MonitorPenalty float64 `yaml:"monitor_penalty" mapstructure:"monitor_penalty"` // <= 0
	AvoidPenalty   float64 `yaml:"avoid_penalty" mapstructure:"avoid_penalty"`     // <= 0
	CombinedFloor  float64 `yaml:"combined_floor" mapstructure:"combined_floor"`   // e.g. -20
}

// ScreenConfig configures universe screening.
type ScreenConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MinScore      float64 `yaml:"min_score" mapstructure:"min_score"`
}

// ServerConfig configures the report API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. Scoring and risk
// tables start from code defaults; a config file overrides only the keys
// it sets.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	// Secrets default to empty so env-only values survive Unmarshal.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "screener.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("market_data.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("market_data.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("market_data.rate_per_sec", 4)
	v.SetDefault("market_data.burst", 4)
	v.SetDefault("market_data.timeout_secs", 30)
	v.SetDefault("market_data.max_retries", 3)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("judgment.requests_per_minute", 5)
	v.SetDefault("judgment.max_attempts", 3)
	v.SetDefault("screen.max_concurrent", 4)
	v.SetDefault("screen.min_score", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	cfg := Config{
		Judgment: DefaultJudgmentConfig(),
		Scoring:  DefaultScoringConfig(),
		Risk:     DefaultRiskConfig(),
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
