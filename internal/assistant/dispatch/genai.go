package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bailey-assistant/internal/assistant/chat"
	apphttp "bailey-assistant/internal/common/http"
)

// GenAIConfig points at the internal model gateway.
type GenAIConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// GenAIProvider posts to the gateway's /api/ai/generate endpoint and retries
// transient failures with exponential backoff.
type GenAIProvider struct {
	config GenAIConfig
	client *apphttp.Client
}

func NewGenAIProvider(cfg GenAIConfig) *GenAIProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &GenAIProvider{
		config: cfg,
		client: apphttp.NewClient(cfg.Timeout),
	}
}

func (p *GenAIProvider) Name() string { return "genai" }

type genAIRequest struct {
	Prompt      string       `json:"prompt"`
	System      string       `json:"system,omitempty"`
	History     []genAITurn  `json:"history,omitempty"`
	Model       string       `json:"model,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
	Context     genAIContext `json:"context"`
}

type genAITurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type genAIContext struct {
	Source string `json:"source"`
}

type genAIResponse struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

func (p *GenAIProvider) GenerateText(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(p.config.BaseURL) == "" {
		return "", fmt.Errorf("%w: genai base url not set", ErrProviderUnavailable)
	}

	body := genAIRequest{
		Prompt:      req.Message,
		System:      req.SystemPrompt,
		History:     toGenAITurns(req.History),
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Context:     genAIContext{Source: "bailey-assistant"},
	}
	headers := map[string]string{}
	if p.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}
	url := strings.TrimRight(p.config.BaseURL, "/") + "/api/ai/generate"

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrProviderTimeout
			}
		}

		var resp genAIResponse
		lastErr = p.client.PostJSON(ctx, url, headers, body, &resp)
		if lastErr == nil {
			return resp.Text, nil
		}
		if ctx.Err() != nil {
			return "", ErrProviderTimeout
		}

		var statusErr *apphttp.StatusError
		if errors.As(lastErr, &statusErr) && !statusErr.Retryable() {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrProviderFailed, lastErr)
}

func toGenAITurns(history []chat.Turn) []genAITurn {
	if len(history) == 0 {
		return nil
	}
	out := make([]genAITurn, len(history))
	for i, t := range history {
		out[i] = genAITurn{Role: string(t.Role), Content: t.Content}
	}
	return out
}
