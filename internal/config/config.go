package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// startup and handed to components by value; nothing mutates it afterwards.
type Config struct {
	Company   CompanyConfig               `yaml:"company" mapstructure:"company"`
	Catalog   CatalogConfig               `yaml:"catalog" mapstructure:"catalog"`
	Rating    RatingConfig                `yaml:"rating" mapstructure:"rating"`
	Providers map[string]ProviderOverride `yaml:"providers" mapstructure:"providers" validate:"dive"`
	Server    ServerConfig                `yaml:"server" mapstructure:"server"`
	Log       LogConfig                   `yaml:"log" mapstructure:"log"`
}

// CompanyConfig identifies the company whose services leads are rated against.
type CompanyConfig struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	ServicesURL string `yaml:"services_url" mapstructure:"services_url" validate:"required,url"`
}

// CatalogConfig configures the service catalog scrape.
type CatalogConfig struct {
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gt=0"`
	MaxServices int      `yaml:"max_services" mapstructure:"max_services" validate:"gt=0"`
	Keywords    []string `yaml:"keywords" mapstructure:"keywords" validate:"min=1,dive,required"`
	UserAgent   string   `yaml:"user_agent" mapstructure:"user_agent"`
}

// RatingConfig configures the per-lead LLM rating call.
type RatingConfig struct {
	DefaultProvider   string `yaml:"default_provider" mapstructure:"default_provider" validate:"required"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gt=0"`
	MaxTokens         int    `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gt=0"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute" validate:"gte=0"`
}

// ProviderOverride replaces the endpoint or model of a built-in provider.
// Keys of Config.Providers are provider names (case-insensitive).
type ProviderOverride struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	Model    string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP upload server.
type ServerConfig struct {
	Port               int `yaml:"port" mapstructure:"port" validate:"gt=0,lte=65535"`
	MaxUploadMB        int `yaml:"max_upload_mb" mapstructure:"max_upload_mb" validate:"gt=0"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute" validate:"gte=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// DefaultKeywords is the keyword set a services list item must hit to count
// as an offered service.
var DefaultKeywords = []string{
	"staffing", "training", "education", "skilling",
	"hr", "compliance", "apprenticeship", "degree",
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADQUAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("company.name", "Acme Workforce")
	v.SetDefault("company.services_url", "https://example.com/services")
	v.SetDefault("catalog.timeout_secs", 10)
	v.SetDefault("catalog.max_services", 10)
	v.SetDefault("catalog.keywords", DefaultKeywords)
	v.SetDefault("catalog.user_agent", "Mozilla/5.0 (compatible; LeadQualifier/1.0)")
	v.SetDefault("rating.default_provider", "Groq")
	v.SetDefault("rating.timeout_secs", 30)
	v.SetDefault("rating.max_tokens", 5)
	v.SetDefault("rating.requests_per_minute", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.rate_limit_per_minute", 30)
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

	cfg.Catalog.Keywords = normalizeKeywords(cfg.Catalog.Keywords)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct-level constraints declared in the validate tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return eris.Wrap(err, "config: validate")
	}
	return nil
}

// normalizeKeywords lowercases and trims keywords, splitting any
// comma-separated entries that arrive from the environment.
func normalizeKeywords(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
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
