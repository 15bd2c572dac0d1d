package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhouzirui/crystal-voice/backend/internal/config"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/chat"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newCompletionServer(t *testing.T, status int, content string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIClientSend(t *testing.T) {
	var captured capturedRequest
	server := newCompletionServer(t, http.StatusOK, "It's sunny.", &captured)

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	reply, err := client.Send(context.Background(), []chat.Message{
		chat.SystemMessage("persona"),
		chat.UserMessage("What's the weather today?"),
	}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "It's sunny.", reply)

	assert.Equal(t, DefaultOpenAIModel, captured.Model)
	assert.Equal(t, 100, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 0.0001)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
}

func TestOpenAIClientUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "empty content", status: http.StatusOK, content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newCompletionServer(t, tt.status, tt.content, nil)
			client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
			require.NoError(t, err)

			_, err = client.Send(context.Background(), []chat.Message{chat.UserMessage("hi")}, DefaultOptions())
			assert.ErrorIs(t, err, ErrUpstreamFailure)
		})
	}
}

func TestNewWithoutCredentialsIsUnconfigured(t *testing.T) {
	client, err := New(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI, OpenAIModel: "gpt-4o-mini"}, nil)
	require.NoError(t, err)
	assert.False(t, client.Configured())
	assert.Equal(t, "gpt-4o-mini", client.Model())

	_, err = client.Send(context.Background(), nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
