package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, status int, content string) (*httptest.Server, *OpenRouterRequest) {
	t.Helper()
	var got OpenRouterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(OpenRouterResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestSummarize(t *testing.T) {
	srv, got := chatServer(t, http.StatusOK, `{"executive_summary":"Trials improved outcomes.","confidence":0.8}`)
	a := NewOpenRouterAnalyzerAt(srv.URL, "key", "test/model", utils.Discard())

	result, err := a.Summarize(context.Background(), "what improved?", []string{"Trials improved outcomes by 12%."})
	require.NoError(t, err)
	assert.Equal(t, "Trials improved outcomes.", result.ExecutiveSummary)
	assert.Equal(t, 0.8, result.Confidence)

	assert.Equal(t, "test/model", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "Question: what improved?")
	assert.Contains(t, got.Messages[0].Content, "[1] Trials improved outcomes by 12%.")
}

func TestSummarizeCodeFence(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, "```json\n{\"executive_summary\":\"Fenced.\",\"confidence\":\"1.7\"}\n```")
	a := NewOpenRouterAnalyzerAt(srv.URL, "key", "m", utils.Discard())

	result, err := a.Summarize(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fenced.", result.ExecutiveSummary)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestSummarizeErrors(t *testing.T) {
	srv, _ := chatServer(t, http.StatusBadGateway, "")
	a := NewOpenRouterAnalyzerAt(srv.URL, "key", "m", utils.Discard())
	_, err := a.Summarize(context.Background(), "q", nil)
	require.ErrorContains(t, err, "status 502")

	srv, _ = chatServer(t, http.StatusOK, "not json at all")
	a = NewOpenRouterAnalyzerAt(srv.URL, "key", "m", utils.Discard())
	_, err = a.Summarize(context.Background(), "q", nil)
	require.ErrorContains(t, err, "failed to parse")
}

func TestJoinPassagesBounded(t *testing.T) {
	long := strings.Repeat("x", 1500)
	joined := joinPassages([]string{long, long, long, long})
	assert.LessOrEqual(t, len(joined), maxPromptChars)
	assert.Contains(t, joined, "[2] ")
	assert.NotContains(t, joined, "[3] ")
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
}
