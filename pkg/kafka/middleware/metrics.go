package kafka_middleware

import (
	"context"
	"time"

	"vaxbook/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics counts Kafka traffic by topic, event type and outcome. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	published       *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
	consumed        *prometheus.CounterVec
	consumeDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaxbook",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Messages published, by topic, event type and outcome.",
		}, []string{"topic", "event_type", "outcome"}),
		publishDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vaxbook",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Time spent writing a message to the broker.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
		consumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaxbook",
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Messages handled by consumers, by topic, event type and outcome.",
		}, []string{"topic", "event_type", "outcome"}),
		consumeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vaxbook",
			Subsystem: "kafka",
			Name:      "consume_duration_seconds",
			Help:      "Time spent handling a consumed message.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeSuccess
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		if m == nil {
			return next(ctx, msg)
		}
		start := time.Now()
		err := next(ctx, msg)
		m.publishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		m.published.WithLabelValues(msg.Topic, msg.GetEventType(), outcome(err)).Inc()
		return err
	}
}

func MetricsConsumerMiddleware(m *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		if m == nil {
			return next(ctx, msg)
		}
		start := time.Now()
		err := next(ctx, msg)
		m.consumeDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		m.consumed.WithLabelValues(msg.Topic, msg.GetEventType(), outcome(err)).Inc()
		return err
	}
}
