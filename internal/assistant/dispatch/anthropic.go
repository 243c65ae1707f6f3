package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"bailey-assistant/internal/assistant/chat"
)

const anthropicDefaultMaxTokens = 1024

// AnthropicProvider calls the Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	hasKey bool
}

// NewAnthropicProvider builds a provider. Retries are left to the caller's
// timeout budget, so the SDK's own retry loop is disabled.
func NewAnthropicProvider(apiKey, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSpace(baseURL)))
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		hasKey: strings.TrimSpace(apiKey) != "",
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) GenerateText(ctx context.Context, req Request) (string, error) {
	if !p.hasKey {
		return "", fmt.Errorf("%w: anthropic api key not set", ErrProviderUnavailable)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicDefaultMaxTokens,
		Messages:  buildAnthropicMessages(req.History, req.Message),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String(), nil
}

// buildAnthropicMessages maps history onto alternating user/assistant turns.
// The API rejects a conversation that starts with the assistant, so leading
// assistant turns are dropped.
func buildAnthropicMessages(history []chat.Turn, message string) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, t := range history {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		if t.Role == chat.RoleAssistant {
			if len(out) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
			continue
		}
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
	}
	return append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))
}
