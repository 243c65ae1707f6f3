package dispatch

import (
	"bailey-assistant/internal/common/config"
	"bailey-assistant/pkg/registry"
)

// NewProviders builds one provider per backend from configuration. Providers
// without credentials are still registered; they report ErrProviderUnavailable
// so the dispatcher falls back.
func NewProviders(cfg config.ProvidersConfig) map[registry.Provider]Provider {
	return map[registry.Provider]Provider{
		registry.ProviderOpenAI:    NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL),
		registry.ProviderAnthropic: NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL),
		registry.ProviderGenAI: NewGenAIProvider(GenAIConfig{
			BaseURL:    cfg.GenAI.BaseURL,
			APIKey:     cfg.GenAI.APIKey,
			Timeout:    config.GetDuration(cfg.GenAI.Timeout),
			MaxRetries: cfg.GenAI.MaxRetries,
		}),
	}
}

// compile-time checks
var (
	_ Provider = (*OpenAIProvider)(nil)
	_ Provider = (*AnthropicProvider)(nil)
	_ Provider = (*GenAIProvider)(nil)
)
