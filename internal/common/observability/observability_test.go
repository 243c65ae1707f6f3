package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestObservability_RecordAndShutdown(t *testing.T) {
	obs, err := New("bailey-test")
	require.NoError(t, err)

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "generate-chat-response", "success")
	obs.RecordJobDuration(ctx, "generate-chat-response", 120*time.Millisecond, "success")
	obs.RecordExchange(ctx, "knowledge_base", "tenant_doctor")

	assert.NoError(t, obs.Shutdown(ctx))
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "x", "failed")
		obs.RecordExchange(ctx, "fallback", "general_inquiry")
	})
	assert.NoError(t, obs.Shutdown(ctx))
}

func TestStartSpan_NoProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "chat.generate")
	require.NotNil(t, ctx)
	assert.NotPanics(t, func() { EndSpan(span, errors.New("boom")) })
}

func TestStartSpan_Recorded(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := NewTracerProvider("bailey-test", rec)
	defer tp.Shutdown(context.Background())

	_, ok := StartSpan(context.Background(), "assistant.GenerateResponse", attribute.String("session.id", "s-1"))
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "dispatch.openai")
	EndSpan(failed, errors.New("401 unauthorized"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "assistant.GenerateResponse", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("session.id", "s-1"))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "401 unauthorized", spans[1].Status().Description)
}
