// Package pipeline relays dashboard change events to an outbound sink. The
// session hands events over without blocking; a background loop batches them
// and loads each batch with exponential backoff.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchLoader writes multiple change events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.ChangeEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Relay queues change events and forwards them in batches.
type Relay struct {
	queue         chan domain.ChangeEvent
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	running       atomic.Bool
	batchSize     int
	flushInterval time.Duration
}

// New creates a Relay. Events beyond queueSize waiting to be loaded are dropped.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration, queueSize int) *Relay {
	return &Relay{
		queue:         make(chan domain.ChangeEvent, queueSize),
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		batchSize:     max(batchSize, 1),
		flushInterval: flushInterval,
	}
}

// Notify enqueues an event without blocking.
func (r *Relay) Notify(ev domain.ChangeEvent) {
	select {
	case r.queue <- ev:
	default:
		r.metrics.EventsDropped.Inc()
		r.logger.Warn("event queue full, dropping change event", "kind", ev.Kind)
	}
}

// CheckReadiness returns nil while the relay loop is running.
func (r *Relay) CheckReadiness(_ context.Context) error {
	if !r.running.Load() {
		return errors.New("event relay is not running")
	}
	return nil
}

// Run forwards batches until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("event relay started", "batch_size", r.batchSize, "flush_interval", r.flushInterval)
	r.running.Store(true)
	r.metrics.RelayRunning.Set(1)
	defer func() {
		r.running.Store(false)
		r.metrics.RelayRunning.Set(0)
	}()

	for {
		batch, ok := r.collect(ctx)
		if !ok {
			r.logger.Info("event relay stopping", "reason", ctx.Err(), "pending", len(r.queue)+len(batch))
			return nil
		}
		if !r.load(ctx, batch) {
			r.logger.Info("event relay stopping", "reason", ctx.Err(), "pending", len(r.queue)+len(batch))
			return nil
		}
	}
}

// collect blocks for the first event, then gathers up to batchSize events or
// until flushInterval elapses. Returns false if the relay should stop.
func (r *Relay) collect(ctx context.Context) ([]domain.ChangeEvent, bool) {
	var first domain.ChangeEvent
	select {
	case <-ctx.Done():
		return nil, false
	case first = <-r.queue:
	}

	batch := make([]domain.ChangeEvent, 0, r.batchSize)
	batch = append(batch, first)

	timer := time.NewTimer(r.flushInterval)
	defer timer.Stop()
	for len(batch) < r.batchSize {
		select {
		case <-ctx.Done():
			return batch, false
		case ev := <-r.queue:
			batch = append(batch, ev)
		case <-timer.C:
			return batch, true
		}
	}
	return batch, true
}

// load retries the batch with exponential backoff. Returns false if the relay
// should stop.
func (r *Relay) load(ctx context.Context, batch []domain.ChangeEvent) bool {
	backoff := initialBackoff
	for {
		start := time.Now()
		err := r.loader.LoadBatch(ctx, batch)
		if err == nil {
			r.metrics.EventsPublished.Add(float64(len(batch)))
			r.metrics.PublishBatchDuration.Observe(time.Since(start).Seconds())
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		r.metrics.PublishErrors.Inc()
		r.logger.Error("load event batch failed", "error", err, "batch_size", len(batch), "retry_in", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}
