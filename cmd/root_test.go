package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ombuds/enrichment-engine/internal/config"
)

// testConfig returns a config that passes Validate("serve") against a
// temporary SQLite database without touching the network.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.Extract = config.ExtractConfig{
		Provider:           "anthropic",
		MaxAttempts:        3,
		BackoffBaseMs:      1000,
		RateLimit:          15,
		WindowSecs:         60,
		MaxTextLength:      100000,
		MaxOutputTokens:    8192,
		Temperature:        0.1,
		AttemptTimeoutSecs: 120,
	}
	c.Anthropic = config.AnthropicConfig{Key: "sk-ant-test", Model: "claude-haiku-4-5-20251001"}
	c.Convert = config.ConvertConfig{Provider: "local", PdfToTextPath: "pdftotext", MaxFileSizeMB: 50, DownloadTimeoutSecs: 60}
	c.Store = config.StoreConfig{
		Driver:           "sqlite",
		DatabaseURL:      filepath.Join(t.TempDir(), "enrichment.db"),
		WriteTimeoutSecs: 10,
		BreakerThreshold: 5,
		BreakerResetSecs: 30,
	}
	c.Pipeline.PreviewChars = 500
	c.Batch.MaxConcurrent = 4
	c.Server = config.ServerConfig{Port: 8000, RequestsPerSecond: 5, Burst: 10, AllowedOrigins: []string{"*"}}
	c.Log = config.LogConfig{Level: "info", Format: "json"}
	return c
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "enrich", "batch", "migrate", "import"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "enrichment-engine", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	flag := rootCmd.PersistentFlags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "json", flag.DefValue)
}

func TestEnrichCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range enrichCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"document", "pje", "transcript", "agenda", "message"} {
		assert.True(t, names[name], "expected enrich subcommand %q not found", name)
	}
}

func TestCommandFlags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	flag = batchCmd.Flags().Lookup("concurrency")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)

	flag = importCmd.Flags().Lookup("csv")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"])

	require.NotNil(t, enrichTranscriptCmd.Flags().Lookup("assistido-id"))
	require.NotNil(t, enrichDocumentCmd.Flags().Lookup("caso-id"))
	require.NotNil(t, enrichMessageCmd.Flags().Lookup("contact-id"))
}
