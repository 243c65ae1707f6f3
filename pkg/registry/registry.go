// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// KnowledgeBaseKey selects no external model; replies come from the catalog.
const KnowledgeBaseKey = "knowledge-base"

func LoadRegistry(path string) (*ModelRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ModelRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &reg, nil
}

// DefaultRegistry lists the models the assistant ships with.
func DefaultRegistry() *ModelRegistry {
	return &ModelRegistry{
		Version:     "1.0.0",
		LastUpdated: "2024-11-01",
		Models: []Model{
			{Key: KnowledgeBaseKey, DisplayName: "Knowledge base only", Provider: ProviderNone},
			{Key: "gpt-4o-mini", DisplayName: "GPT-4o mini", Provider: ProviderOpenAI, Model: "gpt-4o-mini", MaxTokens: 1000},
			{Key: "gpt-4o", DisplayName: "GPT-4o", Provider: ProviderOpenAI, Model: "gpt-4o", MaxTokens: 1000},
			{Key: "claude-haiku", DisplayName: "Claude Haiku", Provider: ProviderAnthropic, Model: "claude-3-5-haiku-latest", MaxTokens: 1000},
			{Key: "claude-sonnet", DisplayName: "Claude Sonnet", Provider: ProviderAnthropic, Model: "claude-3-5-sonnet-latest", MaxTokens: 1000},
			{Key: "gemini-flash", DisplayName: "Gemini Flash (gateway)", Provider: ProviderGenAI, Model: "gemini-1.5-flash", MaxTokens: 1000},
		},
	}
}

// Lookup finds a model by key.
func (r *ModelRegistry) Lookup(key string) (Model, bool) {
	if r == nil {
		return Model{}, false
	}
	for _, m := range r.Models {
		if m.Key == key {
			return m, true
		}
	}
	return Model{}, false
}

// Validate checks keys are unique and providers known.
func (r *ModelRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Models))
	for i, m := range r.Models {
		if m.Key == "" {
			return fmt.Errorf("model %d: key is required", i)
		}
		if seen[m.Key] {
			return fmt.Errorf("model %q: duplicate key", m.Key)
		}
		seen[m.Key] = true

		switch m.Provider {
		case ProviderNone:
		case ProviderOpenAI, ProviderAnthropic, ProviderGenAI:
			if m.Model == "" {
				return fmt.Errorf("model %q: model name is required for provider %s", m.Key, m.Provider)
			}
		default:
			return fmt.Errorf("model %q: unknown provider %q", m.Key, m.Provider)
		}
	}
	return nil
}
