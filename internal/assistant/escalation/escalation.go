// Package escalation notifies people when a conversation needs a human:
// an SNS alert for emergencies and an SES intake email for leads.
package escalation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/assistant/intent"
	"bailey-assistant/internal/assistant/knowledge"
	awssvc "bailey-assistant/internal/common/aws"
	apperrors "bailey-assistant/internal/common/errors"
	"bailey-assistant/internal/common/logger"
	"bailey-assistant/internal/common/metrics"
	"bailey-assistant/internal/common/validation"
)

const (
	ChannelSNS = "sns"
	ChannelSES = "ses"

	DefaultTimeout = 5 * time.Second

	messageExcerptRunes = 280
)

// Config wires the notification targets. An empty topic or intake address
// disables that channel.
type Config struct {
	EmergencyTopicARN string
	FromEmail         string
	IntakeEmail       string
	Timeout           time.Duration
}

// Escalator sends notifications in the background.
type Escalator struct {
	sns    awssvc.SNSService
	ses    awssvc.SESService
	config Config
	logger logger.Logger
	wg     sync.WaitGroup
}

func New(snsClient awssvc.SNSService, sesClient awssvc.SESService, cfg Config, log logger.Logger) *Escalator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Escalator{
		sns:    snsClient,
		ses:    sesClient,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "escalation"}),
	}
}

func (e *Escalator) emergencyEnabled() bool {
	return e != nil && e.sns != nil && e.config.EmergencyTopicARN != ""
}

func (e *Escalator) intakeEnabled() bool {
	return e != nil && e.ses != nil && e.config.IntakeEmail != "" && e.config.FromEmail != ""
}

// Escalate inspects a finished reply and fires any notifications it calls
// for. It returns the channels it dispatched to without waiting on them.
func (e *Escalator) Escalate(message string, opts chat.Options, resp chat.GeneratedResponse) []string {
	var channels []string

	if resp.IsEmergency && e.emergencyEnabled() {
		channels = append(channels, ChannelSNS)
		e.dispatch(ChannelSNS, func(ctx context.Context) error {
			return e.publishEmergency(ctx, message, opts, resp)
		})
	}

	if resp.Intent == string(intent.LeadCapture) && validation.ValidateEmail(opts.UserEmail) && e.intakeEnabled() {
		channels = append(channels, ChannelSES)
		e.dispatch(ChannelSES, func(ctx context.Context) error {
			return e.sendIntake(ctx, message, opts, resp)
		})
	}

	return channels
}

func (e *Escalator) dispatch(channel string, send func(ctx context.Context) error) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.config.Timeout)
		defer cancel()

		if err := send(ctx); err != nil {
			metrics.EscalationsTotal.WithLabelValues(channel, "failed").Inc()
			stdErr := apperrors.NewNotificationSendFailedError(channel, err)
			e.logger.Error("escalation failed", map[string]interface{}{
				"channel":   channel,
				"errorCode": string(stdErr.Code),
				"error":     err.Error(),
			})
			return
		}
		metrics.EscalationsTotal.WithLabelValues(channel, "sent").Inc()
		e.logger.Info("escalation sent", map[string]interface{}{"channel": channel})
	}()
}

func (e *Escalator) publishEmergency(ctx context.Context, message string, opts chat.Options, resp chat.GeneratedResponse) error {
	body := fmt.Sprintf(
		"Emergency language detected in a chat session.\n\nSession: %s\nUser: %s\nMessage: %s\n\nThe visitor was shown emergency contact numbers.",
		orUnknown(resp.SessionID, opts.SessionID),
		orUnknown(opts.UserEmail, opts.UserID),
		knowledge.Excerpt(message, messageExcerptRunes),
	)

	_, err := e.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(e.config.EmergencyTopicARN),
		Subject:  aws.String("Bailey chat: emergency detected"),
		Message:  aws.String(body),
	})
	return err
}

func (e *Escalator) sendIntake(ctx context.Context, message string, opts chat.Options, resp chat.GeneratedResponse) error {
	subject := fmt.Sprintf("New chat enquiry from %s", opts.UserEmail)

	var b strings.Builder
	fmt.Fprintf(&b, "A visitor asked to be contacted.\n\n")
	fmt.Fprintf(&b, "Email: %s\n", opts.UserEmail)
	fmt.Fprintf(&b, "Session: %s\n", orUnknown(resp.SessionID, opts.SessionID))
	fmt.Fprintf(&b, "Message: %s\n", knowledge.Excerpt(message, messageExcerptRunes))
	if len(resp.KnowledgeUsed) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(resp.KnowledgeUsed, ", "))
	}

	_, err := e.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{e.config.IntakeEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(b.String())},
			},
		},
		Source:           aws.String(e.config.FromEmail),
		ReplyToAddresses: []string{opts.UserEmail},
	})
	return err
}

// Close waits for in-flight notifications or until ctx is done.
func (e *Escalator) Close(ctx context.Context) error {
	if e == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func orUnknown(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "unknown"
}
