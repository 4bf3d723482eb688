package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"courtbook/pkg/kafka"
)

// Metrics counts publish outcomes of one producer.
type Metrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	totalDuration atomic.Int64 // nanoseconds
}

type MetricsSnapshot struct {
	Published          int64
	Failed             int64
	AvgPublishDuration time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	snap := MetricsSnapshot{
		Published: published,
		Failed:    m.failed.Load(),
	}
	if published > 0 {
		snap.AvgPublishDuration = time.Duration(m.totalDuration.Load() / published)
	}
	return snap
}

// MetricsProducerMiddleware records every publish into m.
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.published.Add(1)
		m.totalDuration.Add(int64(time.Since(start)))
		return nil
	}
}
