package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-notes/internal/app/api/prompts"
	apperrors "media-notes/internal/app/errors"
)

type capturedRequest struct {
	request openai.ChatCompletionRequest
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured.request))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestSummarizer(server *httptest.Server) *Summarizer {
	config := openai.DefaultConfig("test-api-key")
	config.BaseURL = server.URL + "/v1"
	return NewSummarizer(openai.NewClientWithConfig(config), "", 0.7, nil, zap.NewNop())
}

const notesResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "  1. **Decyzje Kluczowe**\n- ship  "}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestSummarize(t *testing.T) {
	var captured capturedRequest
	server := newTestServer(t, http.StatusOK, notesResponse, &captured)
	s := newTestSummarizer(server)

	result, err := s.Summarize(context.Background(), "we will ship friday", "es")
	require.NoError(t, err)
	assert.Equal(t, "1. **Decyzje Kluczowe**\n- ship", result.Text)
	assert.Equal(t, "es", result.Language)

	assert.Equal(t, openai.GPT4oMini, captured.request.Model)
	assert.InDelta(t, 0.7, captured.request.Temperature, 0.0001)
	require.Len(t, captured.request.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, captured.request.Messages[0].Role)
	for _, marker := range prompts.Default().SectionMarkers("es") {
		assert.Contains(t, captured.request.Messages[0].Content, marker)
	}
	assert.Contains(t, captured.request.Messages[0].Content, "we will ship friday")
}

func TestSummarizeUnknownLanguageFallsBackToEnglish(t *testing.T) {
	var captured capturedRequest
	server := newTestServer(t, http.StatusOK, notesResponse, &captured)

	result, err := newTestSummarizer(server).Summarize(context.Background(), "text", "xx")
	require.NoError(t, err)
	assert.Equal(t, "en", result.Language)
	assert.Contains(t, captured.request.Messages[0].Content, "**Key Decisions**")
}

func TestAnalyze(t *testing.T) {
	var captured capturedRequest
	server := newTestServer(t, http.StatusOK, notesResponse, &captured)
	s := newTestSummarizer(server)

	_, err := s.Analyze(context.Background(), "transcript body", "prior notes", "List the risks", true)
	require.NoError(t, err)
	content := captured.request.Messages[0].Content
	assert.Contains(t, content, `"List the risks"`)
	assert.Contains(t, content, "prior notes")

	_, err = s.Analyze(context.Background(), "transcript body", "prior notes", "  ", false)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit_error"}}`},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.status, tt.body, nil)
			_, err := newTestSummarizer(server).Summarize(context.Background(), "text", "en")
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrSummarize), "got %v", err)
		})
	}
}
