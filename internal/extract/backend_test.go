package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ombuds/enrichment-engine/internal/resilience"
	"github.com/ombuds/enrichment-engine/pkg/anthropic"
)

var testRequest = Request{
	SchemaID:        "classificacao",
	Instructions:    "INSTRUÇÕES\n\nTEXTO PARA ANÁLISE:\n\n",
	Text:            "conteúdo",
	Temperature:     0.1,
	MaxOutputTokens: 512,
}

type mockAnthropic struct{ mock.Mock }

func (m *mockAnthropic) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*anthropic.MessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAnthropicBackend_Complete(t *testing.T) {
	client := &mockAnthropic{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 512 &&
			len(req.System) == 1 && req.System[0].Text == testRequest.Instructions &&
			req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 && req.Messages[0].Content == "conteúdo" &&
			req.Temperature != nil && *req.Temperature == 0.1
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `{"document_type": "laudo"}`}},
	}, nil)

	b := NewAnthropic(client, "claude-haiku-4-5-20251001")
	got, err := b.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, `{"document_type": "laudo"}`, got)
	assert.Equal(t, "anthropic", b.Name())
	client.AssertExpectations(t)
}

func TestAnthropicBackend_EmptyContent(t *testing.T) {
	client := &mockAnthropic{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{StopReason: "max_tokens"}, nil)

	_, err := NewAnthropic(client, "m").Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicBackend_Error(t *testing.T) {
	client := &mockAnthropic{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: refused"))

	_, err := NewAnthropic(client, "m").Complete(context.Background(), testRequest)
	require.Error(t, err)
	assert.True(t, resilience.Retryable(err))
}

type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error
	got  []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.got = parts
	return f.resp, f.err
}

func TestGeminiBackend_Complete(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(` 1}`)}}},
		},
	}}
	b := &GeminiBackend{newModel: func(Request) generator { return gen }}

	got, err := b.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
	require.Len(t, gen.got, 1)
	assert.Equal(t, genai.Text(testRequest.Prompt()), gen.got[0])
	assert.NoError(t, b.Close())
}

func TestGeminiBackend_NoCandidates(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}},
	}}
	b := &GeminiBackend{newModel: func(Request) generator { return gen }}

	_, err := b.Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiBackend_Error(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota")}
	b := &GeminiBackend{newModel: func(Request) generator { return gen }}

	_, err := b.Complete(context.Background(), testRequest)
	assert.ErrorContains(t, err, "quota")
}

func TestOpenAIBackend_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, testRequest.Instructions, msgs[0].(map[string]any)["content"])
		assert.Equal(t, testRequest.Text, msgs[1].(map[string]any)["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\": true}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	b := NewOpenAI("sk-test", "gpt-4o-mini", srv.URL)
	got, err := b.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, got)
}

func TestOpenAIBackend_RateLimitedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("sk-test", "", srv.URL).Complete(context.Background(), testRequest)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestOpenAIBackend_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("sk-test", "", srv.URL).Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewBackend(t *testing.T) {
	_, _, err := NewBackend(context.Background(), BackendConfig{Provider: "anthropic"})
	assert.ErrorContains(t, err, "api key")

	_, _, err = NewBackend(context.Background(), BackendConfig{Provider: "llama", APIKey: "k"})
	assert.ErrorContains(t, err, "unknown provider")

	b, closer, err := NewBackend(context.Background(), BackendConfig{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", b.Name())
	assert.NoError(t, closer.Close())

	b, closer, err = NewBackend(context.Background(), BackendConfig{Provider: "anthropic", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", b.Name())
	assert.NoError(t, closer.Close())
}
