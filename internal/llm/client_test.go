// internal/llm/client_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchbot/internal/common/config"
	"searchbot/internal/common/logger"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.OpenAIConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: 2000,
	}, logger.NewNoOpLogger())
}

func completionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("capital of France"))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Complete(context.Background(), []Message{
		{Role: RoleUser, Content: "reformulate this"},
	})

	require.NoError(t, err)
	assert.Equal(t, "capital of France", got)
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"choices": []interface{}{},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []Message{
		{Role: RoleUser, Content: "anything"},
	})

	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}

func TestClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []Message{
		{Role: RoleUser, Content: "anything"},
	})

	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyCompletion))
}
