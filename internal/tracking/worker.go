package tracking

import (
	"context"
	"log/slog"

	"github.com/petrijr/intakeflow/pkg/api"
)

// Worker pulls events from a Queue and forwards them to a sink.
type Worker struct {
	queue  *Queue
	sink   api.EventSink
	logger *slog.Logger
}

// NewWorker creates a Worker. A nil logger uses slog.Default().
func NewWorker(queue *Queue, sink api.EventSink, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{queue: queue, sink: sink, logger: logger}
}

// ProcessOne pulls a single event from the queue and delivers it.
// Returns (processed, error):
//   - processed == false: ctx was done before an event was obtained.
//   - processed == true: an event was taken; err is the sink's result.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	ev, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	return true, w.deliver(ctx, ev)
}

// Run delivers events until ctx is cancelled. Sink failures are logged
// and the event is dropped.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if _, err := w.ProcessOne(ctx); err != nil && ctx.Err() != nil {
			return nil
		}
	}
}

// Drain delivers every event currently queued and returns how many were
// taken. It is meant for shutdown, after Run has stopped.
func (w *Worker) Drain(ctx context.Context) int {
	n := 0
	for {
		ev, ok := w.queue.TryDequeue()
		if !ok {
			return n
		}
		_ = w.deliver(ctx, ev)
		n++
	}
}

func (w *Worker) deliver(ctx context.Context, ev api.FlowEvent) error {
	if err := w.sink.Track(ctx, ev); err != nil {
		w.logger.WarnContext(ctx, "event_delivery_failed",
			slog.String("event", string(ev.Type)),
			slog.String("survey_id", ev.SurveyID),
			slog.String("session_id", ev.SessionID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
