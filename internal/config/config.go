package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DataConfig selects the lead source.
type DataConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ScoringConfig configures remote lead analysis.
type ScoringConfig struct {
	Provider         string  `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RemoteLimit      int     `yaml:"remote_limit" mapstructure:"remote_limit"`
	Concurrency      int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst        int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	BreakerFailures  int     `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetSecs int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OpenAIConfig holds OpenAI-compatible API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CacheConfig configures the optional Redis analysis cache. An empty
// address disables caching.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	TTLHours      int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// Scoring providers.
const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var dataDrivers = map[string]bool{
	"embedded": true,
	"json":     true,
	"csv":      true,
	"sqlite":   true,
	"postgres": true,
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.driver", "embedded")
	// Empty defaults register the keys so LEADS_* env vars reach Unmarshal.
	v.SetDefault("data.path", "")
	v.SetDefault("data.database_url", "")
	v.SetDefault("scoring.provider", ProviderNone)
	v.SetDefault("scoring.timeout_secs", 30)
	v.SetDefault("scoring.remote_limit", 20)
	v.SetDefault("scoring.concurrency", 4)
	v.SetDefault("scoring.rate_per_sec", 2.0)
	v.SetDefault("scoring.rate_burst", 4)
	v.SetDefault("scoring.breaker_failures", 5)
	v.SetDefault("scoring.breaker_reset_secs", 30)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl_hours", 24)

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

// Validate checks the settings a command needs. Mode is one of "serve",
// "analyze", "read" or "import".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		errs = append(errs, c.validateData()...)
		errs = append(errs, c.validateScoring()...)
	case "analyze":
		errs = append(errs, c.validateData()...)
		errs = append(errs, c.validateScoring()...)
	case "read":
		errs = append(errs, c.validateData()...)
	case "import":
		switch strings.ToLower(c.Data.Driver) {
		case "sqlite":
			if c.Data.Path == "" {
				errs = append(errs, "data.path is required for import")
			}
		case "postgres":
			if c.Data.DatabaseURL == "" {
				errs = append(errs, "data.database_url is required for import")
			}
		default:
			errs = append(errs, fmt.Sprintf("import requires data.driver sqlite or postgres, got %q", c.Data.Driver))
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateData() []string {
	var errs []string
	driver := strings.ToLower(c.Data.Driver)
	if driver != "" && !dataDrivers[driver] {
		errs = append(errs, fmt.Sprintf("data.driver %q is not supported", c.Data.Driver))
	}
	switch driver {
	case "json", "csv", "sqlite":
		if c.Data.Path == "" {
			errs = append(errs, "data.path is required for driver "+driver)
		}
	case "postgres":
		if c.Data.DatabaseURL == "" {
			errs = append(errs, "data.database_url is required for driver postgres")
		}
	}
	return errs
}

func (c *Config) validateScoring() []string {
	var errs []string
	switch strings.ToLower(c.Scoring.Provider) {
	case "", ProviderNone:
	case ProviderAnthropic:
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required for provider anthropic")
		}
	case ProviderOpenAI:
		if c.OpenAI.Key == "" {
			errs = append(errs, "openai.key is required for provider openai")
		}
	default:
		errs = append(errs, fmt.Sprintf("scoring.provider %q is not supported", c.Scoring.Provider))
	}
	if c.Scoring.Concurrency < 1 || c.Scoring.Concurrency > 32 {
		errs = append(errs, "scoring.concurrency must be between 1 and 32")
	}
	if c.Scoring.RemoteLimit < 0 {
		errs = append(errs, "scoring.remote_limit must be >= 0")
	}
	if c.Scoring.TimeoutSecs <= 0 {
		errs = append(errs, "scoring.timeout_secs must be > 0")
	}
	return errs
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
