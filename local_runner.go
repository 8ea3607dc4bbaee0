package intakeflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/petrijr/intakeflow/internal/tracking"
)

// AnalyticsRunner bundles a bounded event queue and the workers draining
// it into a sink, so analytics never block the survey flow.
//
// Typical usage:
//
//	runner := intakeflow.NewAnalyticsRunner(sink, logger, 0)
//	_ = runner.Start(ctx, 1)
//	defer runner.Stop()
//
//	cfg.Events = runner.Sink()
type AnalyticsRunner struct {
	// Queue receives events from the controller.
	Queue *tracking.Queue

	// Worker delivers queued events to the sink.
	Worker *tracking.Worker

	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewAnalyticsRunner constructs a runner delivering into sink. capacity
// bounds the queue; non-positive values use the queue default.
func NewAnalyticsRunner(sink EventSink, logger *slog.Logger, capacity int) *AnalyticsRunner {
	if logger == nil {
		logger = slog.Default()
	}
	q := tracking.NewQueue(capacity)
	return &AnalyticsRunner{
		Queue:  q,
		Worker: tracking.NewWorker(q, sink, logger),
		logger: logger,
	}
}

// Sink is the non-blocking EventSink to put in Config.Events.
func (r *AnalyticsRunner) Sink() EventSink {
	return r.Queue
}

// Start starts 'concurrency' worker goroutines that deliver events until
// Stop is called.
//
// If Start is called more than once without Stop, it returns an error.
func (r *AnalyticsRunner) Start(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("intakeflow: AnalyticsRunner already started")
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer r.wg.Done()
			_ = r.Worker.Run(ctx)
		}()
	}
	return nil
}

// Stop cancels the workers, waits for them to exit and delivers whatever
// is still queued.
func (r *AnalyticsRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()

	if n := r.Worker.Drain(context.Background()); n > 0 {
		r.logger.Debug("analytics_drained", slog.Int("events", n))
	}
	if d := r.Queue.Dropped(); d > 0 {
		r.logger.Warn("analytics_dropped", slog.Int64("events", d))
	}
}
