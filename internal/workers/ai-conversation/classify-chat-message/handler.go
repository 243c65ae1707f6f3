package classifychatmessage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"bailey-assistant/internal/assistant"
	"bailey-assistant/internal/assistant/compose"
	"bailey-assistant/internal/assistant/intent"
	"bailey-assistant/internal/assistant/settings"
	apperrors "bailey-assistant/internal/common/errors"
	"bailey-assistant/internal/common/logger"
	"bailey-assistant/internal/common/metrics"
	"bailey-assistant/internal/common/observability"
	"bailey-assistant/internal/common/validation"
	"bailey-assistant/pkg/registry"
)

const (
	TaskType = "classify-chat-message"
)

var schema = validation.MustCompile(inputSchema)

// Analyzer runs the pre-composition analysis; the assistant engine
// satisfies it.
type Analyzer interface {
	Analyze(message string, s settings.Settings) assistant.Analysis
}

type Handler struct {
	config       *Config
	analyzer     Analyzer
	settings     settings.Store
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, analyzer Analyzer, store settings.Store, obs *observability.Observability, log logger.Logger) *Handler {
	if store == nil {
		store = settings.NewStaticStore(settings.Defaults())
	}
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		analyzer:     analyzer,
		settings:     store,
		errorHandler: apperrors.NewErrorHandler(log),
		obs:          obs,
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeChatInputInvalid)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		h.recordJob(ctx, start, "failed")
		return
	}

	output := h.execute(ctx, input)
	h.completeJob(ctx, client, job, output)
	h.recordJob(ctx, start, "success")
}

func (h *Handler) recordJob(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	if status == "success" {
		metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	}
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
}

func parseInput(variables string) (*Input, error) {
	result, err := schema.ValidateJSON([]byte(variables))
	if err != nil {
		return nil, apperrors.NewChatInputInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewChatInputInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewChatInputInvalidError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	s := h.settings.Get(ctx)
	a := h.analyzer.Analyze(input.Message, s)

	output := &Output{
		IntentAnalysis: IntentAnalysis{
			PrimaryIntent: string(a.Intent),
			Confidence:    compose.DefaultConfidence,
		},
		Matches: make([]Match, 0, len(a.Matches)),
	}

	for _, m := range a.Matches {
		output.Matches = append(output.Matches, Match{
			ID:       m.Entry.ID,
			Title:    m.Entry.Title,
			Category: m.Entry.Category,
			Score:    m.Score,
		})
	}
	if len(a.Matches) > 0 {
		output.IntentAnalysis.Confidence = float64(a.Matches[0].Entry.ConfidenceLevel) / 10
	}

	if o := a.Override; o != nil {
		output.IntentAnalysis.Confidence = o.Confidence
		output.SafetyOverride = &SafetyOverride{
			Kind:                 string(o.Kind),
			IsEmergency:          o.IsEmergency,
			IsLegalAdviceRefusal: o.IsLegalAdviceRefusal,
			ObjectionType:        string(o.ObjectionType),
		}
	}

	output.DataSources = determineDataSources(a, s)

	h.logger.Info("message classified", map[string]interface{}{
		"intent":      output.IntentAnalysis.PrimaryIntent,
		"matchCount":  len(output.Matches),
		"override":    a.Override != nil,
		"dataSources": output.DataSources,
	})
	return output
}

// determineDataSources lists, in a fixed order, what the reply to this
// message would draw on.
func determineDataSources(a assistant.Analysis, s settings.Settings) []string {
	sources := []string{}
	if len(a.Matches) > 0 {
		sources = append(sources, SourceKnowledgeBase)
	}
	if a.Override == nil && s.ActiveModel != registry.KnowledgeBaseKey {
		sources = append(sources, SourceModel)
	}
	if (a.Override != nil && a.Override.IsEmergency) || a.Intent == intent.LeadCapture {
		sources = append(sources, SourceEscalation)
	}
	return sources
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// Execute is the public entry point used by tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewChatInputInvalidError("message is required")
	}
	return h.execute(ctx, input), nil
}
