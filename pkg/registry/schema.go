// pkg/registry/schema.go
package registry

// Provider names the backend that serves a model.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGenAI     Provider = "genai"
	ProviderNone      Provider = "none"
)

type ModelRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Models      []Model `json:"models"`
}

type Model struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description,omitempty"`
	Provider    Provider `json:"provider"`
	Model       string   `json:"model"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
