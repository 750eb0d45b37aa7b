package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/convention/internal/domain/model"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications as JSON, keyed by subject so every
// message about one registration lands on the same partition.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
}

// NewKafkaNotifier creates a synchronous writer for topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return newKafkaNotifier(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
		Async:        false,
	}, topic)
}

func newKafkaNotifier(w messageWriter, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: w, topic: topic}
}

func (k *KafkaNotifier) Notify(ctx context.Context, m model.Notification) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("kafka notifier: encode: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(m.Subject),
		Value: body,
		Time:  m.CreatedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(m.Kind)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka notifier: write %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
