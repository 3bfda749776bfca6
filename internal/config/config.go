package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the top-level configuration for the enrichment engine.
type Config struct {
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Convert   ConvertConfig   `yaml:"convert" mapstructure:"convert"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ExtractConfig tunes the extraction client shared by every pipeline.
type ExtractConfig struct {
	Provider           string  `yaml:"provider" mapstructure:"provider"`
	MaxAttempts        int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBaseMs      int     `yaml:"backoff_base_ms" mapstructure:"backoff_base_ms"`
	RateLimit          int     `yaml:"rate_limit" mapstructure:"rate_limit"`
	WindowSecs         int     `yaml:"window_secs" mapstructure:"window_secs"`
	MaxTextLength      int     `yaml:"max_text_length" mapstructure:"max_text_length"`
	MaxOutputTokens    int     `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	Temperature        float64 `yaml:"temperature" mapstructure:"temperature"`
	AttemptTimeoutSecs int     `yaml:"attempt_timeout_secs" mapstructure:"attempt_timeout_secs"`
}

type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ConvertConfig selects the document-to-text converter and download limits.
type ConvertConfig struct {
	Provider            string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath       string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey          string `yaml:"mistral_key" mapstructure:"mistral_key"`
	MistralModel        string `yaml:"mistral_model" mapstructure:"mistral_model"`
	MaxFileSizeMB       int    `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
	DownloadTimeoutSecs int    `yaml:"download_timeout_secs" mapstructure:"download_timeout_secs"`
	TempDir             string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

type StoreConfig struct {
	Driver           string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL      string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns         int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns         int32  `yaml:"min_conns" mapstructure:"min_conns"`
	WriteTimeoutSecs int    `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	BreakerThreshold int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

type PipelineConfig struct {
	PreviewChars int `yaml:"preview_chars" mapstructure:"preview_chars"`
}

type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

type ServerConfig struct {
	Port              int      `yaml:"port" mapstructure:"port"`
	APIKey            string   `yaml:"api_key" mapstructure:"api_key"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins    []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads .env, config.yaml from the working directory and ENRICH_*
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("extract.provider", "anthropic")
	v.SetDefault("extract.max_attempts", 3)
	v.SetDefault("extract.backoff_base_ms", 1000)
	v.SetDefault("extract.rate_limit", 15)
	v.SetDefault("extract.window_secs", 60)
	v.SetDefault("extract.max_text_length", 100000)
	v.SetDefault("extract.max_output_tokens", 8192)
	v.SetDefault("extract.temperature", 0.1)
	v.SetDefault("extract.attempt_timeout_secs", 120)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("convert.provider", "local")
	v.SetDefault("convert.pdftotext_path", "pdftotext")
	v.SetDefault("convert.mistral_model", "mistral-ocr-latest")
	v.SetDefault("convert.max_file_size_mb", 50)
	v.SetDefault("convert.download_timeout_secs", 60)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.write_timeout_secs", 10)
	v.SetDefault("store.breaker_threshold", 5)
	v.SetDefault("store.breaker_reset_secs", 30)
	v.SetDefault("pipeline.preview_chars", 500)
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.requests_per_second", 5.0)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Keys without a default are only picked up from the environment when
	// viper knows about them.
	for _, key := range []string{
		"anthropic.key", "anthropic.base_url", "gemini.key", "openai.key", "openai.base_url",
		"convert.mistral_key", "convert.temp_dir", "store.database_url", "store.max_conns",
		"store.min_conns", "server.api_key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

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

// ExtractionKey returns the API key of the configured extraction provider.
func (c *Config) ExtractionKey() string {
	switch c.Extract.Provider {
	case "gemini":
		return c.Gemini.Key
	case "openai":
		return c.OpenAI.Key
	default:
		return c.Anthropic.Key
	}
}

// Validate checks the settings a command needs before it starts. mode is one
// of "serve", "enrich", "migrate" or "import". Missing credentials are
// reported together in a single error.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "enrich":
		errs = append(errs, c.validateExtract()...)
		errs = append(errs, c.validateConvert()...)
		errs = append(errs, c.validateStore()...)
		if mode == "serve" {
			if c.Server.Port <= 0 {
				errs = append(errs, "server.port must be > 0")
			}
			if c.Server.RequestsPerSecond < 0 {
				errs = append(errs, "server.requests_per_second must be >= 0")
			}
		}
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 50 {
			errs = append(errs, "batch.max_concurrent must be between 1 and 50")
		}
	case "migrate", "import":
		errs = append(errs, c.validateStore()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateExtract() []string {
	var errs []string
	switch p := c.Extract.Provider; p {
	case "anthropic", "gemini", "openai":
		if c.ExtractionKey() == "" {
			errs = append(errs, p+".key is required")
		}
	default:
		errs = append(errs, "extract.provider must be one of anthropic, gemini, openai")
	}
	if c.Extract.MaxAttempts < 1 || c.Extract.MaxAttempts > 10 {
		errs = append(errs, "extract.max_attempts must be between 1 and 10")
	}
	if c.Extract.Temperature < 0 || c.Extract.Temperature > 1 {
		errs = append(errs, "extract.temperature must be between 0 and 1")
	}
	if c.Extract.RateLimit < 0 {
		errs = append(errs, "extract.rate_limit must be >= 0")
	}
	return errs
}

func (c *Config) validateConvert() []string {
	switch c.Convert.Provider {
	case "local", "":
		return nil
	case "mistral":
		if c.Convert.MistralKey == "" {
			return []string{"convert.mistral_key is required"}
		}
		return nil
	default:
		return []string{"convert.provider must be local or mistral"}
	}
}

func (c *Config) validateStore() []string {
	switch c.Store.Driver {
	case "postgres", "":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required"}
		}
		return nil
	case "sqlite":
		return nil
	default:
		return []string{"store.driver must be postgres or sqlite"}
	}
}

// InitLogger replaces the global zap logger.
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
