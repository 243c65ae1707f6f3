// Package dispatch forwards a composed request to an external model provider
// and reports whether usable text came back. It never returns an error to
// the caller; every failure ends in the FailedFallback state.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/common/logger"
	"bailey-assistant/internal/common/metrics"
	"bailey-assistant/internal/common/observability"
	"bailey-assistant/pkg/registry"
)

// MaxHistoryTurns is how much prior conversation a provider sees.
const MaxHistoryTurns = 10

var (
	ErrProviderUnavailable = errors.New("PROVIDER_UNAVAILABLE")
	ErrProviderTimeout     = errors.New("PROVIDER_TIMEOUT")
	ErrProviderFailed      = errors.New("PROVIDER_FAILED")
	ErrEmptyResponse       = errors.New("PROVIDER_EMPTY_RESPONSE")
)

// Request is the provider-agnostic call.
type Request struct {
	SystemPrompt string
	History      []chat.Turn
	Message      string
	MaxTokens    int
	Temperature  float64
	Model        string
}

// Provider generates text for one request.
type Provider interface {
	Name() string
	GenerateText(ctx context.Context, req Request) (string, error)
}

// State of a single dispatch.
type State string

const (
	NotAttempted       State = "not_attempted"
	AttemptingProvider State = "attempting_provider"
	Succeeded          State = "succeeded"
	FailedFallback     State = "failed_fallback"
)

// Outcome is the terminal result of Dispatch. Err explains a FailedFallback.
type Outcome struct {
	State    State
	Text     string
	Provider string
	Model    string
	Err      error
	Duration time.Duration
}

func (o Outcome) Succeeded() bool { return o.State == Succeeded }

// Dispatcher resolves a model key through the registry and calls the
// matching provider with a bounded timeout.
type Dispatcher struct {
	registry  *registry.ModelRegistry
	providers map[registry.Provider]Provider
	timeout   time.Duration
	logger    logger.Logger
}

func NewDispatcher(reg *registry.ModelRegistry, providers map[registry.Provider]Provider, timeout time.Duration, log logger.Logger) *Dispatcher {
	if reg == nil {
		reg = registry.DefaultRegistry()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		registry:  reg,
		providers: providers,
		timeout:   timeout,
		logger:    log.WithFields(map[string]interface{}{"component": "dispatch"}),
	}
}

// Dispatch runs NotAttempted -> AttemptingProvider -> Succeeded|FailedFallback.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, modelKey string) (out Outcome) {
	out = Outcome{State: NotAttempted}
	start := time.Now()

	model, ok := d.registry.Lookup(modelKey)
	if !ok {
		return d.fallback(out, fmt.Errorf("%w: unknown model %q", ErrProviderUnavailable, modelKey))
	}
	out.Model = model.Model
	out.Provider = string(model.Provider)

	if model.Provider == registry.ProviderNone {
		return d.fallback(out, fmt.Errorf("%w: model %q has no provider", ErrProviderUnavailable, modelKey))
	}
	provider, ok := d.providers[model.Provider]
	if !ok || provider == nil {
		return d.fallback(out, fmt.Errorf("%w: provider %s not configured", ErrProviderUnavailable, model.Provider))
	}

	out.State = AttemptingProvider
	req.Model = model.Model
	req.History = CapHistory(req.History, MaxHistoryTurns)
	if req.MaxTokens <= 0 {
		req.MaxTokens = model.MaxTokens
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	callCtx, span := observability.StartSpan(callCtx, "dispatch.generate_text",
		attribute.String("provider", out.Provider),
		attribute.String("model", out.Model),
	)

	text, err := d.call(callCtx, provider, req)
	out.Duration = time.Since(start)
	observability.EndSpan(span, err)

	if err != nil {
		if callCtx.Err() != nil && !errors.Is(err, ErrProviderTimeout) {
			err = fmt.Errorf("%w: %v", ErrProviderTimeout, err)
		}
		return d.fallback(out, err)
	}
	if strings.TrimSpace(text) == "" {
		return d.fallback(out, ErrEmptyResponse)
	}

	out.State = Succeeded
	out.Text = strings.TrimSpace(text)
	metrics.ProviderRequestsTotal.WithLabelValues(out.Provider, "succeeded").Inc()
	d.logger.Debug("provider succeeded", map[string]interface{}{
		"provider":   out.Provider,
		"model":      out.Model,
		"durationMs": out.Duration.Milliseconds(),
	})
	return out
}

// call shields the dispatcher from provider panics.
func (d *Dispatcher) call(ctx context.Context, p Provider, req Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrProviderFailed, r)
		}
	}()
	return p.GenerateText(ctx, req)
}

func (d *Dispatcher) fallback(out Outcome, err error) Outcome {
	out.State = FailedFallback
	out.Text = ""
	out.Err = err

	provider := out.Provider
	if provider == "" {
		provider = "unknown"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(provider, ErrorCode(err)).Inc()

	fields := map[string]interface{}{
		"provider":  provider,
		"model":     out.Model,
		"errorCode": ErrorCode(err),
		"error":     err.Error(),
	}
	if errors.Is(err, ErrProviderUnavailable) {
		d.logger.Debug("no provider for model, using knowledge base", fields)
	} else {
		d.logger.Warn("provider failed, using knowledge base", fields)
	}
	return out
}

// ErrorCode maps a dispatch error to its sentinel code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderUnavailable):
		return ErrProviderUnavailable.Error()
	case errors.Is(err, ErrProviderTimeout):
		return ErrProviderTimeout.Error()
	case errors.Is(err, ErrEmptyResponse):
		return ErrEmptyResponse.Error()
	default:
		return ErrProviderFailed.Error()
	}
}

// CapHistory keeps the last n turns.
func CapHistory(history []chat.Turn, n int) []chat.Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
