// Package worker runs the fixed-size pool of aggregation workers that
// drain the ingestion queue into the ranking engine's ledger.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
	popPollInterval       = 100 * time.Millisecond
)

// Queue defines how workers receive records.
type Queue interface {
	TryPop(timeout time.Duration) (model.Record, bool)
}

// Aggregator appends an accepted record into the authoritative ledger.
// Workers never sort; they maintain insertion order and defer ordering
// to the ranking engine.
type Aggregator interface {
	Append(rec model.Record)
}

// Worker drains the queue into the aggregator until shut down.
type Worker struct {
	queue      Queue
	aggregator Aggregator
	name       string
	popTimeout time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithPopTimeout sets how long TryPop waits per iteration.
func WithPopTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.popTimeout = d
		}
	}
}

// New creates a Worker with configuration options.
func New(q Queue, aggregator Aggregator, opts ...Option) *Worker {
	w := &Worker{
		queue:      q,
		aggregator: aggregator,
		name:       "worker",
		popTimeout: popPollInterval,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		default:
		}

		rec, ok := w.queue.TryPop(w.popTimeout)
		if !ok {
			continue
		}

		w.processRecord(ctx, rec)
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processRecord appends one record to the ledger.
func (w *Worker) processRecord(ctx context.Context, rec model.Record) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	w.aggregator.Append(rec)
	metrics.RecordRecordIngested()
}

// Pool manages the fixed-size set of p_w aggregation workers.
type Pool struct {
	workers []*Worker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool of the given size.
func NewPool(workerCount int, q Queue, aggregator Aggregator) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers:  make([]*Worker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = New(q, aggregator, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
