package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the extraction model and its transport.
type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint), "anthropic", or
	// "none" for keyword-only extraction.
	Provider string `yaml:"provider" mapstructure:"provider"`
	// BaseURL overrides the provider's API host.
	BaseURL             string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey              string        `yaml:"api_key" mapstructure:"api_key"`
	Model               string        `yaml:"model" mapstructure:"model"`
	FallbackModel       string        `yaml:"fallback_model" mapstructure:"fallback_model"`
	Temperature         float64       `yaml:"temperature" mapstructure:"temperature"`
	WorkflowTemperature float64       `yaml:"workflow_temperature" mapstructure:"workflow_temperature"`
	MaxTokens           int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	JSONMode            bool          `yaml:"json_mode" mapstructure:"json_mode"`
	RPS                 float64       `yaml:"rps" mapstructure:"rps"`
	Burst               int           `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs         int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Breaker             BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
	// PricingFile adds or overrides per-model token rates.
	PricingFile string `yaml:"pricing_file" mapstructure:"pricing_file"`
}

// Timeout returns the per-call timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// BreakerConfig configures the per-model circuit breaker.
type BreakerConfig struct {
	Threshold    int `yaml:"threshold" mapstructure:"threshold"`
	CoolDownSecs int `yaml:"cool_down_secs" mapstructure:"cool_down_secs"`
}

// ExtractionConfig configures the extraction core and its data files.
type ExtractionConfig struct {
	MinTextLength   int    `yaml:"min_text_length" mapstructure:"min_text_length"`
	DefaultContext  string `yaml:"default_context" mapstructure:"default_context"`
	DefaultStrategy string `yaml:"default_strategy" mapstructure:"default_strategy"`
	// Optional files; empty means the built-in tables.
	CityTable         string `yaml:"city_table" mapstructure:"city_table"`
	Extension         string `yaml:"extension" mapstructure:"extension"`
	CompletenessTable string `yaml:"completeness_table" mapstructure:"completeness_table"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs     int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs    int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxBodyBytes        int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ONBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.fallback_model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.workflow_temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.json_mode", true)
	v.SetDefault("llm.rps", 2.0)
	v.SetDefault("llm.burst", 2)
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("llm.breaker.threshold", 5)
	v.SetDefault("llm.breaker.cool_down_secs", 30)
	v.SetDefault("llm.pricing_file", "")
	v.SetDefault("extraction.min_text_length", 3)
	v.SetDefault("extraction.default_context", "general")
	v.SetDefault("extraction.default_strategy", "balanced")
	v.SetDefault("extraction.city_table", "")
	v.SetDefault("extraction.extension", "")
	v.SetDefault("extraction.completeness_table", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "onboarding.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_secs", 15)
	v.SetDefault("server.write_timeout_secs", 120)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var (
	providers  = []string{"openai", "anthropic", "none"}
	strategies = []string{"minimal", "optimized", "balanced", "few_shot", "enhanced"}
	drivers    = []string{"sqlite", "postgres"}
)

// Validate checks the settings a command mode needs and reports every
// problem at once. Modes: extract, prompt, completeness, serve.
func (c *Config) Validate(mode string) error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	switch mode {
	case "prompt", "completeness":
	case "extract":
		c.validateLLM(add)
		c.validateExtraction(add)
	case "serve":
		c.validateLLM(add)
		c.validateExtraction(add)
		c.validateStore(add)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			add("server.port must be > 0 and <= 65535")
		}
		if c.Server.MaxBodyBytes <= 0 {
			add("server.max_body_bytes must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateLLM(add func(string, ...any)) {
	l := c.LLM
	if !slices.Contains(providers, l.Provider) {
		add("llm.provider must be one of %s", strings.Join(providers, ", "))
		return
	}
	if l.Provider == "none" {
		return
	}
	if l.Model == "" {
		add("llm.model is required")
	}
	if l.Provider == "anthropic" && l.APIKey == "" {
		add("llm.api_key is required for the anthropic provider")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		add("llm.temperature must be between 0 and 2")
	}
	if l.WorkflowTemperature < 0 || l.WorkflowTemperature > 2 {
		add("llm.workflow_temperature must be between 0 and 2")
	}
	if l.MaxTokens <= 0 {
		add("llm.max_tokens must be > 0")
	}
	if l.RPS < 0 {
		add("llm.rps must be >= 0")
	}
	if l.Breaker.Threshold < 1 {
		add("llm.breaker.threshold must be >= 1")
	}
}

func (c *Config) validateExtraction(add func(string, ...any)) {
	e := c.Extraction
	if e.MinTextLength < 1 {
		add("extraction.min_text_length must be >= 1")
	}
	if !slices.Contains(strategies, e.DefaultStrategy) {
		add("extraction.default_strategy must be one of %s", strings.Join(strategies, ", "))
	}
	if e.DefaultContext == "" {
		add("extraction.default_context is required")
	}
}

func (c *Config) validateStore(add func(string, ...any)) {
	s := c.Store
	if !slices.Contains(drivers, s.Driver) {
		add("store.driver must be one of %s", strings.Join(drivers, ", "))
		return
	}
	if s.Driver == "postgres" && s.DatabaseURL == "" {
		add("store.database_url is required for the postgres driver")
	}
	if s.Driver == "sqlite" && s.SQLitePath == "" {
		add("store.sqlite_path is required for the sqlite driver")
	}
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
