// Package assistant runs the chat pipeline: safety gate, intent and
// knowledge scoring, composition, optional model dispatch, then the
// exchange log and escalation side effects.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/assistant/compose"
	"bailey-assistant/internal/assistant/dispatch"
	"bailey-assistant/internal/assistant/escalation"
	"bailey-assistant/internal/assistant/exchangelog"
	"bailey-assistant/internal/assistant/intent"
	"bailey-assistant/internal/assistant/knowledge"
	"bailey-assistant/internal/assistant/safety"
	"bailey-assistant/internal/assistant/settings"
	"bailey-assistant/internal/common/logger"
	"bailey-assistant/internal/common/metrics"
	"bailey-assistant/internal/common/observability"
)

// DefaultWordsPerDelta is how many words each streamed delta carries.
const DefaultWordsPerDelta = 3

// Deps are the collaborators an Engine is built from. Only Catalog is
// required to be valid; everything else has a working default.
type Deps struct {
	Catalog       *knowledge.Catalog
	Scorer        *knowledge.Scorer
	Composer      *compose.Composer
	Dispatcher    *dispatch.Dispatcher
	Settings      settings.Store
	Exchanges     *exchangelog.AsyncLogger
	Escalator     *escalation.Escalator
	Observability *observability.Observability
	Logger        logger.Logger
	WordsPerDelta int
}

// Engine is safe for concurrent use. It holds no per-request state.
type Engine struct {
	catalog       *knowledge.Catalog
	scorer        *knowledge.Scorer
	composer      *compose.Composer
	dispatcher    *dispatch.Dispatcher
	settings      settings.Store
	exchanges     *exchangelog.AsyncLogger
	escalator     *escalation.Escalator
	obs           *observability.Observability
	logger        logger.Logger
	wordsPerDelta int
}

// New fails only when no catalog is given and the built-in one is invalid.
func New(d Deps) (*Engine, error) {
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	if d.Catalog == nil {
		c, err := knowledge.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("load built-in catalog: %w", err)
		}
		d.Catalog = c
	}
	if d.Scorer == nil {
		d.Scorer = knowledge.DefaultScorer()
	}
	if d.Composer == nil {
		d.Composer = compose.NewComposer()
	}
	if d.Dispatcher == nil {
		d.Dispatcher = dispatch.NewDispatcher(nil, nil, 0, d.Logger)
	}
	if d.Settings == nil {
		d.Settings = settings.NewStaticStore(settings.Defaults())
	}
	if d.WordsPerDelta <= 0 {
		d.WordsPerDelta = DefaultWordsPerDelta
	}

	return &Engine{
		catalog:       d.Catalog,
		scorer:        d.Scorer,
		composer:      d.Composer,
		dispatcher:    d.Dispatcher,
		settings:      d.Settings,
		exchanges:     d.Exchanges,
		escalator:     d.Escalator,
		obs:           d.Observability,
		logger:        d.Logger.WithFields(map[string]interface{}{"component": "engine"}),
		wordsPerDelta: d.WordsPerDelta,
	}, nil
}

// Catalog returns the catalog the engine scores against.
func (e *Engine) Catalog() *knowledge.Catalog { return e.catalog }

// Settings returns the store the engine reads settings from.
func (e *Engine) Settings() settings.Store { return e.settings }

// Analysis is everything known about a message before a reply is composed.
type Analysis struct {
	Intent   intent.Label
	Override *safety.Override
	Matches  []knowledge.ScoredMatch
}

// Analyze runs the safety gate, the classifier and the scorer. Knowledge
// matches are skipped when the knowledge base is switched off.
func (e *Engine) Analyze(message string, s settings.Settings) Analysis {
	a := Analysis{
		Intent:   intent.Classify(message),
		Override: safety.Check(message, s.SafetyFlags()),
	}
	if s.UseKnowledgeBase {
		a.Matches = e.scorer.Score(message, e.catalog)
	}
	return a
}

// GenerateResponse always returns a usable reply for any string input.
func (e *Engine) GenerateResponse(ctx context.Context, message string, history []chat.Turn, opts chat.Options) chat.GeneratedResponse {
	start := time.Now()
	opts = withSession(opts)

	ctx, span := observability.StartSpan(ctx, "assistant.GenerateResponse",
		attribute.String("session.id", opts.SessionID))
	defer observability.EndSpan(span, nil)

	s := e.settings.Get(ctx)
	a, resp := e.prepare(message, s)
	resp = e.finish(ctx, message, history, opts, s, a, resp, start)

	span.SetAttributes(
		attribute.String("assistant.intent", resp.Intent),
		attribute.String("assistant.source", string(resp.Source)),
	)
	return resp
}

// prepare composes the knowledge-base reply. A panic anywhere in the pure
// pipeline degrades to the general fallback.
func (e *Engine) prepare(message string, s settings.Settings) (a Analysis, resp chat.GeneratedResponse) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("compose panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			a = Analysis{Intent: intent.GeneralInquiry}
			resp = e.composer.Compose("", intent.GeneralInquiry, nil, nil)
		}
	}()

	a = e.Analyze(message, s)
	resp = e.composer.Compose(message, a.Intent, a.Matches, a.Override)
	return a, resp
}

// finish dispatches to the active model when no override fired, stamps the
// session and timing, and fires the side effects.
func (e *Engine) finish(ctx context.Context, message string, history []chat.Turn, opts chat.Options,
	s settings.Settings, a Analysis, resp chat.GeneratedResponse, start time.Time) chat.GeneratedResponse {

	if a.Override != nil {
		metrics.SafetyOverridesTotal.WithLabelValues(string(a.Override.Kind)).Inc()
		e.logger.Info("safety override", map[string]interface{}{
			"kind":      string(a.Override.Kind),
			"sessionId": opts.SessionID,
		})
	} else {
		resp = e.applyModel(ctx, message, history, s, a, resp)
	}

	resp.SessionID = opts.SessionID
	resp.ResponseTimeMs = time.Since(start).Milliseconds()

	e.record(ctx, message, opts, resp, time.Since(start))
	return resp
}

func (e *Engine) applyModel(ctx context.Context, message string, history []chat.Turn,
	s settings.Settings, a Analysis, resp chat.GeneratedResponse) chat.GeneratedResponse {

	outcome := e.dispatcher.Dispatch(ctx, dispatch.Request{
		SystemPrompt: dispatch.BuildSystemPrompt(s.PromptVerbosity, a.Matches),
		History:      history,
		Message:      message,
		MaxTokens:    s.MaxResponseLength,
		Temperature:  s.Temperature,
	}, s.ActiveModel)

	if !outcome.Succeeded() {
		return resp
	}

	resp.Content = outcome.Text
	resp.Source = chat.SourceAI
	resp.Model = outcome.Model
	if d := e.composer.Disclaimer(a.Matches); d != "" && !strings.Contains(resp.Content, d) {
		resp.Content += "\n\n" + d
	}
	return resp
}

func (e *Engine) record(ctx context.Context, message string, opts chat.Options, resp chat.GeneratedResponse, elapsed time.Duration) {
	metrics.ResponsesTotal.WithLabelValues(string(resp.Source), resp.Intent).Inc()
	metrics.ResponseDuration.WithLabelValues(string(resp.Source)).Observe(elapsed.Seconds())
	e.obs.RecordExchange(ctx, string(resp.Source), resp.Intent)

	if e.exchanges != nil {
		e.exchanges.Log(exchangelog.FromResponse(message, opts, resp))
	}
	e.escalator.Escalate(message, opts, resp)

	e.logger.Debug("response generated", map[string]interface{}{
		"sessionId":      opts.SessionID,
		"intent":         resp.Intent,
		"source":         string(resp.Source),
		"xp":             resp.XPAwarded,
		"responseTimeMs": resp.ResponseTimeMs,
	})
}

func withSession(opts chat.Options) chat.Options {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	return opts
}
