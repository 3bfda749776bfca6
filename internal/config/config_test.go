package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml or .env is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Extract.Provider)
	assert.Equal(t, 3, cfg.Extract.MaxAttempts)
	assert.Equal(t, 1000, cfg.Extract.BackoffBaseMs)
	assert.Equal(t, 15, cfg.Extract.RateLimit)
	assert.Equal(t, 60, cfg.Extract.WindowSecs)
	assert.Equal(t, 100000, cfg.Extract.MaxTextLength)
	assert.Equal(t, 8192, cfg.Extract.MaxOutputTokens)
	assert.InDelta(t, 0.1, cfg.Extract.Temperature, 0.001)
	assert.Equal(t, 120, cfg.Extract.AttemptTimeoutSecs)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "local", cfg.Convert.Provider)
	assert.Equal(t, "pdftotext", cfg.Convert.PdfToTextPath)
	assert.Equal(t, 50, cfg.Convert.MaxFileSizeMB)
	assert.Equal(t, 60, cfg.Convert.DownloadTimeoutSecs)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 10, cfg.Store.WriteTimeoutSecs)
	assert.Equal(t, 5, cfg.Store.BreakerThreshold)
	assert.Equal(t, 30, cfg.Store.BreakerResetSecs)
	assert.Equal(t, 500, cfg.Pipeline.PreviewChars)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.InDelta(t, 5.0, cfg.Server.RequestsPerSecond, 0.001)
	assert.Equal(t, 10, cfg.Server.Burst)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
extract:
  provider: gemini
  max_attempts: 5
store:
  driver: sqlite
log:
  level: debug
  format: console
server:
  port: 9090
  allowed_origins:
    - https://app.ombuds.org
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Extract.Provider)
	assert.Equal(t, 5, cfg.Extract.MaxAttempts)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.ombuds.org"}, cfg.Server.AllowedOrigins)
	// Defaults still apply for unset values
	assert.Equal(t, 15, cfg.Extract.RateLimit)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ENRICH_STORE_DRIVER", "postgres")
	t.Setenv("ENRICH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("ENRICH_SERVER_PORT", "3000")
	t.Setenv("ENRICH_EXTRACT_RATE_LIMIT", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Extract.RateLimit)
}

func TestLoadEnvWithoutDefault(t *testing.T) {
	chdirTemp(t)

	t.Setenv("ENRICH_ANTHROPIC_KEY", "sk-ant-key")
	t.Setenv("ENRICH_STORE_DATABASE_URL", "postgres://localhost/ombuds")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-key", cfg.Anthropic.Key)
	assert.Equal(t, "postgres://localhost/ombuds", cfg.Store.DatabaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ENRICH_SERVER_API_KEY=from-dotenv\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("ENRICH_SERVER_API_KEY") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Server.APIKey)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Extract.Provider = "anthropic"
	cfg.Extract.MaxAttempts = 3
	cfg.Extract.Temperature = 0.1
	cfg.Extract.RateLimit = 15
	cfg.Convert.Provider = "local"
	cfg.Store.Driver = "postgres"
	cfg.Batch.MaxConcurrent = 4
	cfg.Server.Port = 8000
	return cfg
}

func TestValidateEnrich_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Anthropic.Key = "sk-ant-key"

	assert.NoError(t, cfg.Validate("enrich"))
}

func TestValidateEnrich_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Convert.Provider = "mistral"

	err := cfg.Validate("enrich")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "anthropic.key is required")
	assert.Contains(t, err.Error(), "convert.mistral_key is required")
}

func TestValidateEnrich_ProviderKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	cfg.Extract.Provider = "openai"
	cfg.Anthropic.Key = "sk-ant-key"

	err := cfg.Validate("enrich")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "openai.key is required")

	cfg.OpenAI.Key = "sk-openai"
	assert.NoError(t, cfg.Validate("enrich"))
	assert.Equal(t, "sk-openai", cfg.ExtractionKey())

	cfg.Extract.Provider = "mistral"
	err = cfg.Validate("enrich")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extract.provider must be one of")
}

func TestValidateMigrate(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("migrate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
	assert.NotContains(t, err.Error(), "anthropic.key")

	cfg.Store.DatabaseURL = "postgres://localhost/main"
	assert.NoError(t, cfg.Validate("migrate"))
	assert.NoError(t, cfg.Validate("import"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Anthropic.Key = "sk-ant-key"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	cfg.Anthropic.Key = "sk-ant-key"

	cfg.Batch.MaxConcurrent = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch.max_concurrent must be between 1 and 50")

	cfg.Batch.MaxConcurrent = 50
	cfg.Extract.MaxAttempts = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extract.max_attempts")

	cfg.Extract.MaxAttempts = 3
	cfg.Extract.Temperature = 1.5
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extract.temperature")

	cfg.Extract.Temperature = 0
	assert.NoError(t, cfg.Validate("serve"))
}
