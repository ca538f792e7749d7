package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

	// maxPromptChars bounds the passage text sent to the model.
	maxPromptChars = 4000
)

// Analyzer writes an executive summary for a research query from the
// passages that best matched it.
type Analyzer interface {
	Summarize(ctx context.Context, query string, passages []string) (*models.ExecutiveSummaryResult, error)
}

type openRouterAnalyzer struct {
	apiKey   string
	model    string
	endpoint string
	logger   *utils.Logger
	client   *http.Client
}

type OpenRouterRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenRouterResponse struct {
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

type Choice struct {
	Message Message `json:"message"`
}

func NewOpenRouterAnalyzer(apiKey, model string, logger *utils.Logger) Analyzer {
	return NewOpenRouterAnalyzerAt(DefaultEndpoint, apiKey, model, logger)
}

// NewOpenRouterAnalyzerAt targets a custom chat-completions endpoint.
func NewOpenRouterAnalyzerAt(endpoint, apiKey, model string, logger *utils.Logger) Analyzer {
	return &openRouterAnalyzer{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		logger:   logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (a *openRouterAnalyzer) Summarize(ctx context.Context, query string, passages []string) (*models.ExecutiveSummaryResult, error) {
	prompt := fmt.Sprintf(`You are a research assistant. Answer the question using only the passages below.

Question: %s

Passages:
%s

Respond ONLY with a valid JSON object (no markdown, no code blocks) with the following structure:
{
  "executive_summary": "A concise 2-3 sentence answer grounded in the passages",
  "confidence": "A number between 0 and 1 describing how well the passages answer the question"
}`, query, joinPassages(passages))

	reqBody := OpenRouterRequest{
		Model: a.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "Smart Doc Analysis")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode)
	}

	var openRouterResp OpenRouterResponse
	if err := json.Unmarshal(body, &openRouterResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if openRouterResp.Error != nil {
		return nil, fmt.Errorf("OpenRouter API error: %s", openRouterResp.Error.Message)
	}

	if len(openRouterResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	result, err := parseSummary(openRouterResp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Error("Failed to parse LLM response", "content", openRouterResp.Choices[0].Message.Content)
		return nil, err
	}

	return result, nil
}

// rawSummary tolerates models that quote the confidence number.
type rawSummary struct {
	ExecutiveSummary string          `json:"executive_summary"`
	Confidence       json.RawMessage `json:"confidence"`
}

func parseSummary(content string) (*models.ExecutiveSummaryResult, error) {
	var raw rawSummary
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		content = extractJSON(content)
		if err := json.Unmarshal([]byte(content), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	if strings.TrimSpace(raw.ExecutiveSummary) == "" {
		return nil, fmt.Errorf("LLM response has no executive summary")
	}

	result := &models.ExecutiveSummaryResult{ExecutiveSummary: strings.TrimSpace(raw.ExecutiveSummary)}
	if len(raw.Confidence) > 0 {
		var n float64
		if err := json.Unmarshal(raw.Confidence, &n); err != nil {
			var s string
			if json.Unmarshal(raw.Confidence, &s) == nil {
				fmt.Sscanf(s, "%g", &n)
			}
		}
		result.Confidence = clamp(n)
	}

	return result, nil
}

func joinPassages(passages []string) string {
	var b strings.Builder
	for i, p := range passages {
		entry := fmt.Sprintf("[%d] %s\n", i+1, strings.TrimSpace(p))
		if b.Len()+len(entry) > maxPromptChars {
			break
		}
		b.WriteString(entry)
	}
	return b.String()
}

func clamp(n float64) float64 {
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	}
	return n
}

// extractJSON attempts to extract JSON from markdown code blocks
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	}
	if end := strings.LastIndex(content, "```"); end >= 0 {
		content = content[:end]
	}

	return strings.TrimSpace(content)
}
