// Package kafka publishes resolution events for downstream analytics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

// Publisher produces one message per completed resolution to a Kafka topic.
// It implements resolver.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the resolution events topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and writes a resolution event. Events are keyed by
// district so per-district ordering is preserved within a partition.
func (p *Publisher) Publish(ctx context.Context, event domain.ResolutionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize resolution event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.DistrictID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(event.Source)},
			{Key: "resolved_at", Value: []byte(event.ResolvedAt.Format(time.RFC3339))},
		},
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
