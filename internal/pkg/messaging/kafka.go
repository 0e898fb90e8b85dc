package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrKafkaBrokersRequired is returned when no Kafka brokers are configured.
var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

// KafkaConfig configures the Kafka backend.
type KafkaConfig struct {
	Brokers      []string
	WriteTimeout time.Duration
}

// Kafka publishes to Kafka topics through a single writer that routes by the
// per-message topic.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka constructs a Kafka publisher.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Kafka{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}}, nil
}

// Publish writes msg to a topic. Messages with the same Key land on the same
// partition.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	kmsg := kafka.Message{
		Topic: destination,
		Key:   msg.Key,
		Value: msg.Body,
		Time:  time.Now(),
	}
	for _, h := range msg.Headers {
		if h.Key != "" {
			kmsg.Headers = append(kmsg.Headers, kafka.Header{Key: h.Key, Value: h.Value})
		}
	}

	if err := k.writer.WriteMessages(ctx, kmsg); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes broker connections.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
