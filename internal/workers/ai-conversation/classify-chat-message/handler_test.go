package classifychatmessage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bailey-assistant/internal/assistant"
	"bailey-assistant/internal/assistant/intent"
	"bailey-assistant/internal/assistant/safety"
	"bailey-assistant/internal/assistant/settings"
	"bailey-assistant/internal/common/config"
	apperrors "bailey-assistant/internal/common/errors"
	"bailey-assistant/internal/common/logger"
)

func newHandler(t *testing.T, s settings.Settings) *Handler {
	t.Helper()
	engine, err := assistant.New(assistant.Deps{Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return NewHandler(LoadConfig(config.WorkerConfig{}), engine, settings.NewStaticStore(s), nil, logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestExecute_KnowledgeMatch(t *testing.T) {
	h := newHandler(t, settings.Defaults())

	out, err := h.Execute(context.Background(), &Input{Message: "What is a Tenant Doctor arrangement?"})
	require.NoError(t, err)

	assert.Equal(t, "tenant_doctor", out.IntentAnalysis.PrimaryIntent)
	assert.Nil(t, out.SafetyOverride)
	require.NotEmpty(t, out.Matches)
	assert.Equal(t, "tenant-doctor", out.Matches[0].ID)
	assert.Greater(t, out.Matches[0].Score, 0.0)
	assert.Greater(t, out.IntentAnalysis.Confidence, 0.0)
	assert.Equal(t, []string{SourceKnowledgeBase}, out.DataSources)
}

func TestExecute_Emergency(t *testing.T) {
	s := settings.Defaults()
	s.ActiveModel = "gpt-4o-mini"
	h := newHandler(t, s)

	out, err := h.Execute(context.Background(), &Input{Message: "I'm being arrested right now, help"})
	require.NoError(t, err)

	require.NotNil(t, out.SafetyOverride)
	assert.Equal(t, string(safety.KindEmergency), out.SafetyOverride.Kind)
	assert.True(t, out.SafetyOverride.IsEmergency)
	assert.NotContains(t, out.DataSources, SourceModel)
	assert.Contains(t, out.DataSources, SourceEscalation)
}

func TestExecute_KnowledgeBaseDisabled(t *testing.T) {
	s := settings.Defaults()
	s.UseKnowledgeBase = false
	h := newHandler(t, s)

	out, err := h.Execute(context.Background(), &Input{Message: "What is a Tenant Doctor arrangement?"})
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
	assert.NotNil(t, out.Matches)
	assert.Empty(t, out.DataSources)
}

func TestExecute_EmptyMessage(t *testing.T) {
	h := newHandler(t, settings.Defaults())

	_, err := h.Execute(context.Background(), &Input{Message: " "})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeChatInputInvalid, apperrors.Normalize(err).Code)
}

// ==========================
// Data sources
// ==========================

func TestDetermineDataSources(t *testing.T) {
	model := settings.Defaults()
	model.ActiveModel = "claude-haiku"

	tests := []struct {
		name     string
		analysis assistant.Analysis
		settings settings.Settings
		want     []string
	}{
		{"nothing", assistant.Analysis{Intent: intent.Greeting}, settings.Defaults(), []string{}},
		{"model only", assistant.Analysis{Intent: intent.Greeting}, model, []string{SourceModel}},
		{"lead capture", assistant.Analysis{Intent: intent.LeadCapture}, settings.Defaults(), []string{SourceEscalation}},
		{
			"refusal skips model",
			assistant.Analysis{Intent: intent.GeneralInquiry, Override: &safety.Override{Kind: safety.KindLegalAdvice}},
			model,
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineDataSources(tt.analysis, tt.settings))
		})
	}
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(`{"message":"hello","sessionId":"s-1"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello", input.Message)

	for _, bad := range []string{`{}`, `{"message":""}`, `{"message":[]}`, `not json`} {
		_, err := parseInput(bad)
		require.Error(t, err, bad)
		assert.Equal(t, apperrors.ErrCodeChatInputInvalid, apperrors.Normalize(err).Code)
	}
}
