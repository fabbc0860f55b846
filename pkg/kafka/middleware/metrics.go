package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"darassa/pkg/kafka"
)

// Metrics holds process-wide publish counters.
type Metrics struct {
	messagesPublished       atomic.Int64
	messagesPublishedFailed atomic.Int64
	publishDurationTotal    atomic.Int64 // nanoseconds
}

var globalMetrics = &Metrics{}

func GetMetrics() *Metrics {
	return globalMetrics
}

// Reset zeroes every counter. Tests use it between cases.
func (m *Metrics) Reset() {
	m.messagesPublished.Store(0)
	m.messagesPublishedFailed.Store(0)
	m.publishDurationTotal.Store(0)
}

func (m *Metrics) Published() int64 {
	return m.messagesPublished.Load()
}

func (m *Metrics) PublishFailed() int64 {
	return m.messagesPublishedFailed.Load()
}

func (m *Metrics) GetPublishRate(window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(m.Published()) / window.Seconds()
}

// GetAvgPublishDuration averages over successful and failed attempts.
func (m *Metrics) GetAvgPublishDuration() time.Duration {
	attempts := m.Published() + m.PublishFailed()
	if attempts == 0 {
		return 0
	}
	return time.Duration(m.publishDurationTotal.Load() / attempts)
}

func (m *Metrics) GetPublishErrorRate() float64 {
	attempts := m.Published() + m.PublishFailed()
	if attempts == 0 {
		return 0
	}
	return float64(m.PublishFailed()) / float64(attempts)
}

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		globalMetrics.publishDurationTotal.Add(int64(time.Since(start)))

		if err != nil {
			globalMetrics.messagesPublishedFailed.Add(1)
		} else {
			globalMetrics.messagesPublished.Add(1)
		}
		return err
	}
}
