package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/config"
)

// kafkaSink publishes events to a Kafka topic for downstream consumers.
type kafkaSink struct {
	writer *kafka.Writer
	logger *zap.Logger
}

type kafkaEvent struct {
	Level     string         `json:"level"`
	Component string         `json:"component"`
	Event     string         `json:"event"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewKafkaSink creates a Kafka-backed sink, or nil when no brokers are configured.
func NewKafkaSink(cfg config.KafkaConfig, logger *zap.Logger) Sink {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		WriteTimeout:           10 * time.Second,
		Async:                  true,
		AllowAutoTopicCreation: true,
	}
	return &kafkaSink{writer: w, logger: logger}
}

func (s *kafkaSink) Log(ctx context.Context, level, component, event string, details map[string]any) {
	payload, err := json.Marshal(kafkaEvent{
		Level:     level,
		Component: component,
		Event:     event,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(component),
		Value: payload,
	}); err != nil {
		s.logger.Warn("kafka sink write failed", zap.Error(err))
	}
}

// Close flushes the async writer.
func (s *kafkaSink) Close() error {
	return s.writer.Close()
}
