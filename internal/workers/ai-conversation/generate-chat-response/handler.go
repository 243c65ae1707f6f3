package generatechatresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"bailey-assistant/internal/assistant/chat"
	apperrors "bailey-assistant/internal/common/errors"
	"bailey-assistant/internal/common/logger"
	"bailey-assistant/internal/common/metrics"
	"bailey-assistant/internal/common/observability"
	"bailey-assistant/internal/common/validation"
)

const (
	TaskType = "generate-chat-response"
)

var (
	ErrInvalidInput = errors.New("CHAT_INPUT_INVALID")
)

var schema = validation.MustCompile(inputSchema)

// Generator produces a reply; the assistant engine satisfies it.
type Generator interface {
	GenerateResponse(ctx context.Context, message string, history []chat.Turn, opts chat.Options) chat.GeneratedResponse
}

type Handler struct {
	config       *Config
	engine       Generator
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, engine Generator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		engine:       engine,
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

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.fail(ctx, client, job, err)
		h.recordJob(ctx, start, "failed")
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		h.recordJob(ctx, start, "failed")
		return
	}

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

func (h *Handler) parseInput(variables string) (*Input, error) {
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewChatInputInvalidError("message is required"))
	}

	history := input.History
	if h.config.MaxHistory > 0 && len(history) > h.config.MaxHistory {
		history = history[len(history)-h.config.MaxHistory:]
	}

	resp := h.engine.GenerateResponse(ctx, input.Message, history, chat.Options{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		UserEmail: input.UserEmail,
	})

	h.logger.Info("chat response generated", map[string]interface{}{
		"sessionId": resp.SessionID,
		"intent":    resp.Intent,
		"source":    resp.Source,
		"emergency": resp.IsEmergency,
	})

	return &Output{
		Response:    resp,
		IsEmergency: resp.IsEmergency,
		Intent:      resp.Intent,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
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
		return
	}

	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

// Execute is the public entry point used by tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
