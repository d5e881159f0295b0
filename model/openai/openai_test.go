package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/namancryu/TravelPMS/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ model.Provider = (*Provider)(nil)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1,
  "model": "grok-3-mini",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  다낭 어떠세요?  "}}]
}`

func TestProvider_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	p := New(
		WithName("grok"),
		WithModel("grok-3-mini"),
		WithBaseURL(srv.URL+"/v1/"),
		WithAPIKey("test-key"),
	)

	text, err := p.Generate(context.Background(), "바다 여행 추천")
	require.NoError(t, err)
	assert.Equal(t, "다낭 어떠세요?", text)

	assert.Equal(t, "grok-3-mini", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "바다 여행 추천", msgs[1].(map[string]any)["content"])
	assert.EqualValues(t, 2000, body["max_tokens"])
}

func TestProvider_QuotaStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests"}}`))
	}))
	defer srv.Close()

	p := New(WithName("gemini"), WithBaseURL(srv.URL+"/"), WithAPIKey("k"))
	_, err := p.Generate(context.Background(), "hi")
	require.Error(t, err)

	assert.True(t, model.IsQuota(err))
	var pe *model.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "gemini", pe.Provider)
	assert.Equal(t, http.StatusTooManyRequests, pe.Status)
}

func TestProvider_GenericStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	p := New(WithName("groq"), WithBaseURL(srv.URL+"/"), WithAPIKey("k"))
	_, err := p.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.False(t, model.IsQuota(err))
}

func TestProvider_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL+"/"), WithAPIKey("k"))
	_, err := p.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, model.ErrEmptyResponse)
}

func TestProvider_MissingKeySkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	key := ""
	p := New(WithBaseURL(srv.URL+"/"), WithAPIKeyFunc(func() string { return key }))
	_, err := p.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Zero(t, hits.Load())
	assert.Equal(t, "openai", p.Info().Vendor)
}
