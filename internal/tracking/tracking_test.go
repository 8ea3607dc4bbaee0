package tracking

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/intakeflow/pkg/api"
)

type memorySink struct {
	mu     sync.Mutex
	events []api.FlowEvent
	err    error
}

func (s *memorySink) Track(ctx context.Context, ev api.FlowEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *memorySink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestQueue_TrackNeverBlocks(t *testing.T) {
	q := NewQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Track(ctx, api.FlowEvent{Type: api.EventStarted}))
	require.NoError(t, q.Track(ctx, api.FlowEvent{Type: api.EventStepSubmitted}))
	require.ErrorIs(t, q.Track(ctx, api.FlowEvent{Type: api.EventCompleted}), ErrQueueFull)

	require.Equal(t, 2, q.Len())
	require.Equal(t, int64(1), q.Dropped())

	ev, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, api.EventStarted, ev.Type)
}

func TestQueue_DequeueRespectsContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorker_ProcessOneDeliversInOrder(t *testing.T) {
	q := NewQueue(10)
	sink := &memorySink{}
	w := NewWorker(q, sink, nil)
	ctx := context.Background()

	for _, typ := range []api.EventType{api.EventStarted, api.EventInterstitialShown, api.EventBMISkip} {
		require.NoError(t, q.Track(ctx, api.FlowEvent{Type: typ}))
	}
	for i := 0; i < 3; i++ {
		processed, err := w.ProcessOne(ctx)
		require.True(t, processed)
		require.NoError(t, err)
	}

	require.Equal(t, api.EventStarted, sink.events[0].Type)
	require.Equal(t, api.EventBMISkip, sink.events[2].Type)
}

func TestWorker_SinkFailureIsLoggedAndDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	q := NewQueue(10)
	sink := &memorySink{err: errors.New("pixel endpoint down")}
	w := NewWorker(q, sink, logger)
	ctx := context.Background()

	require.NoError(t, q.Track(ctx, api.FlowEvent{Type: api.EventCompleted, SurveyID: "s1"}))
	processed, err := w.ProcessOne(ctx)
	require.True(t, processed)
	require.Error(t, err)
	require.Zero(t, q.Len())
	require.Contains(t, buf.String(), "event_delivery_failed")
	require.Contains(t, buf.String(), "pixel endpoint down")
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	q := NewQueue(10)
	sink := &memorySink{}
	w := NewWorker(q, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, q.Track(ctx, api.FlowEvent{Type: api.EventStarted}))
	require.Eventually(t, func() bool { return sink.len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestWorker_Drain(t *testing.T) {
	q := NewQueue(10)
	sink := &memorySink{}
	w := NewWorker(q, sink, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Track(ctx, api.FlowEvent{Type: api.EventBack, Position: i}))
	}
	require.Equal(t, 4, w.Drain(ctx))
	require.Equal(t, 4, sink.len())
	require.Zero(t, w.Drain(ctx))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, sink.Track(context.Background(), api.FlowEvent{
		Type:     api.EventLoginRedirect,
		SurveyID: "survey-1",
		Category: "weight-loss",
		Position: 2,
	}))
	out := buf.String()
	require.Contains(t, out, "flow_event")
	require.Contains(t, out, "event=gate.login_redirect")
	require.Contains(t, out, "category=weight-loss")
}
