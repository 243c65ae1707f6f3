// Package exchangelog records each message/reply pair. Writes never affect
// the response the caller already has.
package exchangelog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bailey-assistant/internal/assistant/chat"
)

// Exchange is one logged request/response pair.
type Exchange struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"sessionId"`
	UserID           string    `json:"userId,omitempty"`
	UserMessage      string    `json:"userMessage"`
	AssistantMessage string    `json:"assistantMessage"`
	Intent           string    `json:"intent"`
	KnowledgeUsed    []string  `json:"knowledgeUsed"`
	XPAwarded        int       `json:"xpAwarded"`
	Confidence       float64   `json:"confidence"`
	ResponseTimeMs   int64     `json:"responseTimeMs"`
	Source           string    `json:"source"`
	Model            string    `json:"model,omitempty"`
	SuggestedActions []string  `json:"suggestedActions"`
	ShowDisclaimer   bool      `json:"showDisclaimer"`
	CreatedAt        time.Time `json:"createdAt"`
}

// FromResponse builds the exchange record for a finished reply.
func FromResponse(message string, opts chat.Options, resp chat.GeneratedResponse) Exchange {
	sessionID := resp.SessionID
	if sessionID == "" {
		sessionID = opts.SessionID
	}
	return Exchange{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		UserID:           opts.UserID,
		UserMessage:      message,
		AssistantMessage: resp.Content,
		Intent:           resp.Intent,
		KnowledgeUsed:    nonNil(resp.KnowledgeUsed),
		XPAwarded:        resp.XPAwarded,
		Confidence:       resp.Confidence,
		ResponseTimeMs:   resp.ResponseTimeMs,
		Source:           string(resp.Source),
		Model:            resp.Model,
		SuggestedActions: nonNil(resp.SuggestedActions),
		ShowDisclaimer:   resp.ShowDisclaimer,
		CreatedAt:        time.Now().UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Repository persists exchanges. Name labels the sink in logs and metrics.
type Repository interface {
	Name() string
	LogExchange(ctx context.Context, ex Exchange) error
}

// NopRepository discards every exchange.
type NopRepository struct{}

func (NopRepository) Name() string { return "nop" }

func (NopRepository) LogExchange(context.Context, Exchange) error { return nil }
