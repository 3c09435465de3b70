package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/api/metrics"
	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sink delivers a toast to the live connections of its session.
type Sink interface {
	Deliver(toast domain.Toast)
}

// Dispatcher routes toasts to a fixed set of workers using consistent hashing
// on the session id, so toasts of one session arrive in the order they were
// raised.
type Dispatcher struct {
	workers []chan domain.Toast
	sink    Sink
	log     zerolog.Logger
}

var _ ports.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Toast, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Toast, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// toasts still queued at that point are discarded.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify queues a toast for its session's worker. It never blocks: when the
// worker is saturated the toast is dropped and counted.
func (d *Dispatcher) Notify(toast domain.Toast) {
	idx := d.shardIndex(toast.SessionID)
	select {
	case d.workers[idx] <- toast:
		metrics.ToastsTotal.WithLabelValues(string(toast.Kind), "queued").Inc()
		metrics.ToastQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ToastsTotal.WithLabelValues(string(toast.Kind), "dropped").Inc()
		d.log.Warn().
			Str("kind", string(toast.Kind)).
			Int("worker_id", idx).
			Msg("toast queue full, dropping toast")
	}
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Toast) {
	depth := metrics.ToastQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case toast, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.sink.Deliver(toast)
			metrics.ToastsTotal.WithLabelValues(string(toast.Kind), "delivered").Inc()
		}
	}
}
