package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ombuds/enrichment-engine/internal/config"
	"github.com/ombuds/enrichment-engine/internal/registry"
	"github.com/ombuds/enrichment-engine/internal/resilience"
)

func TestInitPipeline_SQLite(t *testing.T) {
	c := testConfig(t)

	env, err := initPipeline(context.Background(), c, "enrich")
	require.NoError(t, err)
	t.Cleanup(env.Close)

	assert.NotNil(t, env.Enricher)
	assert.Equal(t, resilience.CircuitClosed, env.Store.State())
	assert.NoError(t, env.Store.Ping(context.Background()))
}

func TestInitPipeline_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Anthropic.Key = ""

	_, err := initPipeline(context.Background(), c, "enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestInitPipeline_UnknownConverter(t *testing.T) {
	c := testConfig(t)
	c.Convert.Provider = "docling"

	_, err := initPipeline(context.Background(), c, "enrich")
	assert.Error(t, err)
}

func TestExtractionSettings(t *testing.T) {
	c := testConfig(t)
	c.OpenAI = config.OpenAIConfig{Model: "gpt-4o-mini", BaseURL: "http://localhost:11434/v1"}
	c.Gemini.Model = "gemini-2.0-flash"

	assert.Equal(t, "claude-haiku-4-5-20251001", extractionModel(c))

	c.Extract.Provider = "openai"
	assert.Equal(t, "gpt-4o-mini", extractionModel(c))
	assert.Equal(t, "http://localhost:11434/v1", extractionBaseURL(c))

	c.Extract.Provider = "gemini"
	assert.Equal(t, "gemini-2.0-flash", extractionModel(c))
	assert.Empty(t, extractionBaseURL(c))
}

func TestBuildRouter_Health(t *testing.T) {
	c := testConfig(t)
	env, err := initPipeline(context.Background(), c, "serve")
	require.NoError(t, err)
	t.Cleanup(env.Close)

	srv := httptest.NewServer(buildRouter(env, c.Server))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "closed", body["circuit"])
	assert.Equal(t, version, body["version"])
}

func TestBuildRouter_RejectsInvalidInput(t *testing.T) {
	c := testConfig(t)
	c.Server.APIKey = "secret"
	env, err := initPipeline(context.Background(), c, "serve")
	require.NoError(t, err)
	t.Cleanup(env.Close)

	srv := httptest.NewServer(buildRouter(env, c.Server))
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/enrich/pje-text", strings.NewReader(`{"raw_text":"curto"}`))
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRunServer_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunImport_SQLite(t *testing.T) {
	c := testConfig(t)
	st, err := initStore(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	path := filepath.Join(t.TempDir(), "assistidos.csv")
	require.NoError(t, os.WriteFile(path, []byte("id;nome\n1;Ana Souza\n2;Bruno Lima\n"), 0600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	importDelimiter = ";"
	t.Cleanup(func() { importDelimiter = "," })

	stats, err := runImport(context.Background(), st, registry.KindClients, f)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)

	client, err := st.FindClientByName(context.Background(), "bruno")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, int64(2), client.ID)
}

func TestRunImport_BadDelimiter(t *testing.T) {
	importDelimiter = ";;"
	t.Cleanup(func() { importDelimiter = "," })

	_, err := runImport(context.Background(), nil, registry.KindClients, strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single character")
}

func TestReadTextArg(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("texto do stdin"))

	text, err := readTextArg(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "texto do stdin", text)

	path := filepath.Join(t.TempDir(), "pauta.txt")
	require.NoError(t, os.WriteFile(path, []byte("Pauta"), 0600))
	text, err = readTextArg(cmd, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "Pauta", text)

	_, err = readTextArg(cmd, []string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func TestMimeFromPath(t *testing.T) {
	assert.Equal(t, "application/pdf", mimeFromPath("x/Sentenca.PDF"))
	assert.Equal(t, "text/markdown", mimeFromPath("nota.md"))
	assert.Equal(t, "image/jpeg", mimeFromPath("foto.jpeg"))
	assert.Equal(t, "text/plain", mimeFromPath("sem_extensao"))
}

func TestOptionalID(t *testing.T) {
	assert.Nil(t, optionalID(0))
	assert.Equal(t, int64(5), *optionalID(5))
}
