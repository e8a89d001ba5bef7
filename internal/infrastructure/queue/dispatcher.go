package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/api/metrics"
	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Persister is the downstream consumer of dispatched records.
type Persister interface {
	Persist(ctx context.Context, event *domain.CanonicalTrackingEvent) error
}

// Dispatcher decouples webhook acks from store writes: normalized records are
// fanned out to a fixed set of workers, sharded by fnv hash on the tracking
// number so writes for one shipment stay ordered relative to each other.
type Dispatcher struct {
	workers []chan *domain.CanonicalTrackingEvent
	service Persister
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service Persister, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan *domain.CanonicalTrackingEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.CanonicalTrackingEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a record to the worker responsible for its tracking number.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event *domain.CanonicalTrackingEvent) {
	idx := d.shardIndex(event.TrackingNumber)
	d.workers[idx] <- event
	metrics.StoreQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a tracking number deterministically to a worker index.
func (d *Dispatcher) shardIndex(trackingNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.CanonicalTrackingEvent) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.StoreQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			if err := d.service.Persist(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("tracking_number", event.TrackingNumber).
					Int("worker_id", id).
					Msg("record persistence failed")
			}
		}
	}
}
