// Package redpanda publishes prediction lifecycle events to Redpanda/Kafka.
package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// DefaultTopic receives one record per finished prediction.
const DefaultTopic = "future-predictions"

// syncProducer is the part of *kgo.Client the publisher needs.
type syncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher implements domain.EventPublisher on top of a franz-go client.
type Publisher struct {
	client syncProducer
	topic  string
}

var _ domain.EventPublisher = (*Publisher)(nil)

// NewPublisher connects to brokers and makes sure topic exists.
func NewPublisher(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	slog.Info("creating redpanda publisher", slog.Any("brokers", brokers), slog.String("topic", topic))

	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.DialTimeout(10*time.Second),
		kgo.RecordDeliveryTimeout(30*time.Second),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := createTopicIfNotExists(ctx, client, topic, 1, 1); err != nil {
		// the broker may forbid topic creation; producing still works if it exists
		slog.Warn("failed to create topic", slog.String("topic", topic), slog.Any("error", err))
	}
	return &Publisher{client: client, topic: topic}, nil
}

func newPublisherWithClient(c syncProducer, topic string) *Publisher {
	return &Publisher{client: c, topic: topic}
}

// PublishPrediction writes ev keyed by user id, so events for one user stay ordered.
func (p *Publisher) PublishPrediction(ctx domain.Context, ev domain.PredictionEvent) error {
	if ev.UserID == "" {
		return fmt.Errorf("op=events.publish: %w: empty user id", domain.ErrInvalidArgument)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		observability.RecordEventPublish("error")
		return fmt.Errorf("op=events.publish: %w", err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.UserID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "user_id", Value: []byte(ev.UserID)},
			{Key: "processing_status", Value: []byte(ev.Status)},
			{Key: "path", Value: []byte(ev.Path)},
		},
	}
	if ev.RequestID != "" {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: "request_id", Value: []byte(ev.RequestID)})
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		observability.RecordEventPublish("error")
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("op=events.publish: %w: %w", domain.ErrUpstreamTimeout, err)
		}
		return fmt.Errorf("op=events.publish: %w", err)
	}
	observability.RecordEventPublish("ok")
	observability.LoggerFromContext(ctx).Debug("prediction event published",
		slog.String("user_id", ev.UserID), slog.String("status", string(ev.Status)), slog.String("topic", p.topic))
	return nil
}

// Close flushes and closes the client.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

// Noop discards events. It is used when no brokers are configured.
type Noop struct{}

var _ domain.EventPublisher = Noop{}

func (Noop) PublishPrediction(domain.Context, domain.PredictionEvent) error { return nil }
