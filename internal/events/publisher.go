package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher emits payment events. Publishing is best-effort: callers log
// failures but never fail a charge because of one.
type Publisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
	Close() error
}

// kafkaPublisher wraps a sarama synchronous producer.
type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("Kafka publisher initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic))

	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event PaymentEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// Keyed by payment so all events of one payment stay ordered.
		Key:   sarama.StringEncoder(event.PaymentID),
		Value: sarama.ByteEncoder(eventBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("Failed to publish payment event",
			zap.String("event_type", event.EventType),
			zap.String("payment_id", event.PaymentID),
			zap.Error(err))
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	p.logger.Debug("Payment event published",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("payment_id", event.PaymentID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))

	return nil
}

func (p *kafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// noopPublisher drops events; used when no brokers are configured and in tests.
type noopPublisher struct{}

// NewNoopPublisher creates a publisher that discards all events.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event PaymentEvent) error { return nil }
func (noopPublisher) Close() error                                          { return nil }
