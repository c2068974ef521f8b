package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"councellorx-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_MapsRolesAndOptions(t *testing.T) {
	var seen ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "a"},
		{Role: "model", Content: "b"},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "assistant", seen.Messages[1].Role)
	assert.Equal(t, 0.2, seen.Options.Temperature)
	assert.Equal(t, 64, seen.Options.NumPredict)
	assert.False(t, seen.Stream)
}

func TestChat_EmptyAndTruncated(t *testing.T) {
	tests := []struct {
		name string
		body string
		want llm.FailureReason
	}{
		{"empty", `{"message":{"role":"assistant","content":""},"done":true}`, llm.FailureEmpty},
		{"length", `{"message":{"role":"assistant","content":""},"done":true,"done_reason":"length"}`, llm.FailureTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, tt.want, llm.Classify(err))
		})
	}
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewOllamaProvider(url, "llama3").Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, llm.FailureNetwork, llm.Classify(err))
}
