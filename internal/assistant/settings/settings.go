// Package settings provides the runtime knobs the assistant reads on every
// request. Settings are passed explicitly; stores only decide where the
// current value comes from.
package settings

import (
	"context"

	"bailey-assistant/internal/assistant/safety"
	"bailey-assistant/internal/common/config"
	"bailey-assistant/pkg/registry"
)

const (
	MinResponseLength = 50
	MaxResponseLength = 4000
	MaxTemperature    = 2.0
)

// Settings are the per-request assistant toggles.
type Settings struct {
	EmergencyDetection bool    `json:"emergencyDetection"`
	LegalAdviceRefusal bool    `json:"legalAdviceRefusal"`
	ObjectionHandling  bool    `json:"objectionHandling"`
	Streaming          bool    `json:"streaming"`
	UseKnowledgeBase   bool    `json:"useKnowledgeBase"`
	MaxResponseLength  int     `json:"maxResponseLength"`
	Temperature        float64 `json:"temperature"`
	PromptVerbosity    string  `json:"promptVerbosity"`
	ActiveModel        string  `json:"activeModel"`
}

// Defaults turns every safety check on and answers from the catalog only.
func Defaults() Settings {
	return Settings{
		EmergencyDetection: true,
		LegalAdviceRefusal: true,
		ObjectionHandling:  true,
		Streaming:          true,
		UseKnowledgeBase:   true,
		MaxResponseLength:  1000,
		Temperature:        0.7,
		PromptVerbosity:    "standard",
		ActiveModel:        registry.KnowledgeBaseKey,
	}
}

// FromConfig builds settings from the assistant.defaults config section.
func FromConfig(d config.SettingsDefaults) Settings {
	return Settings{
		EmergencyDetection: d.EmergencyDetection,
		LegalAdviceRefusal: d.LegalAdviceRefusal,
		ObjectionHandling:  d.ObjectionHandling,
		Streaming:          d.Streaming,
		UseKnowledgeBase:   d.UseKnowledgeBase,
		MaxResponseLength:  d.MaxResponseLength,
		Temperature:        d.Temperature,
		PromptVerbosity:    d.PromptVerbosity,
		ActiveModel:        d.ActiveModel,
	}.Normalize()
}

// Normalize clamps numeric knobs and replaces unknown enum values.
func (s Settings) Normalize() Settings {
	switch {
	case s.MaxResponseLength <= 0:
		s.MaxResponseLength = Defaults().MaxResponseLength
	case s.MaxResponseLength < MinResponseLength:
		s.MaxResponseLength = MinResponseLength
	case s.MaxResponseLength > MaxResponseLength:
		s.MaxResponseLength = MaxResponseLength
	}

	if s.Temperature < 0 {
		s.Temperature = 0
	}
	if s.Temperature > MaxTemperature {
		s.Temperature = MaxTemperature
	}

	switch s.PromptVerbosity {
	case "concise", "standard", "detailed":
	default:
		s.PromptVerbosity = "standard"
	}

	if s.ActiveModel == "" {
		s.ActiveModel = registry.KnowledgeBaseKey
	}
	return s
}

// SafetyFlags projects the safety toggles.
func (s Settings) SafetyFlags() safety.Flags {
	return safety.Flags{
		EmergencyDetection: s.EmergencyDetection,
		LegalAdviceRefusal: s.LegalAdviceRefusal,
		ObjectionHandling:  s.ObjectionHandling,
	}
}

// Store returns the current settings. Get never fails; implementations fall
// back to their defaults.
type Store interface {
	Get(ctx context.Context) Settings
	Invalidate(ctx context.Context) error
}

// Source loads the authoritative settings, e.g. from the database.
type Source interface {
	Load(ctx context.Context) (Settings, error)
}

// StaticStore always returns the same settings.
type StaticStore struct {
	settings Settings
}

func NewStaticStore(s Settings) *StaticStore {
	return &StaticStore{settings: s.Normalize()}
}

func (s *StaticStore) Get(context.Context) Settings { return s.settings }

func (s *StaticStore) Invalidate(context.Context) error { return nil }
