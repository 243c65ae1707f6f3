package exchangelog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "assistant.exchanges"

// MessageWriter is the kafka-go writer surface the repository uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer for the exchange topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireOne,
	}
}

// KafkaRepository publishes each exchange as a JSON event keyed by session,
// so one conversation stays on one partition.
type KafkaRepository struct {
	writer MessageWriter
}

func NewKafkaRepository(w MessageWriter) *KafkaRepository {
	return &KafkaRepository{writer: w}
}

func (r *KafkaRepository) Name() string { return "kafka" }

func (r *KafkaRepository) LogExchange(ctx context.Context, ex Exchange) error {
	value, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encode exchange: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ex.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "intent", Value: []byte(ex.Intent)},
			{Key: "source", Value: []byte(ex.Source)},
		},
		Time: ex.CreatedAt,
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish exchange: %w", err)
	}
	return nil
}

func (r *KafkaRepository) Close() error {
	return r.writer.Close()
}
