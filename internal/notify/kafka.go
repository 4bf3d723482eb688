package notify

import (
	"context"
	"fmt"
	"time"

	"courtbook/pkg/kafka"
	kafka_config "courtbook/pkg/kafka/config"
	kafka_middleware "courtbook/pkg/kafka/middleware"
	"courtbook/pkg/logger"
)

const (
	sourceName    = "courtbook"
	schemaVersion = "1"
)

// Kafka publishes events to a single topic through the kafka-go producer.
type Kafka struct {
	producer *kafka.Producer
	metrics  *kafka_middleware.Metrics
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafka(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (*Kafka, error) {
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	metrics := &kafka_middleware.Metrics{}
	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	}
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))

	return &Kafka{
		producer: producer,
		metrics:  metrics,
		timeout:  cfg.PublishTimeout,
		log:      log,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, ev Event) {
	msg, err := buildMessage(ev)
	if err != nil {
		k.log.Error("Failed to encode domain event", "event_type", ev.Type, "error", err)
		return
	}

	// The triggering write already committed; a caller that gives up must
	// not cut the publish short.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.timeout)
	defer cancel()

	if err := k.producer.Publish(ctx, msg); err != nil {
		k.log.Warn("Failed to publish domain event",
			"event_type", ev.Type,
			"key", ev.Key,
			"topic", k.producer.Topic(),
			"error", err,
		)
	}
}

func (k *Kafka) Close() error {
	snap := k.metrics.Snapshot()
	k.log.Info("Closing kafka publisher",
		"published", snap.Published,
		"failed", snap.Failed,
		"avg_publish_duration", snap.AvgPublishDuration,
	)
	return k.producer.Close()
}

func buildMessage(ev Event) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(ev.Key).
		WithEventType(ev.Type).
		WithCorrelationID(ev.CorrelationID).
		WithSchemaVersion(schemaVersion).
		WithSource(sourceName).
		WithValue(ev.Payload).
		Build()
}
