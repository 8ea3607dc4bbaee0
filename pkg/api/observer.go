package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// FlowInfo identifies the survey instance an observer callback refers to.
type FlowInfo struct {
	SessionID string
	SurveyID  string
	Category  Category
	Position  int
	Phase     Phase
}

// Observer receives callbacks from the flow controller for logging,
// metrics and analytics.
//
// Implementations must be fast and must not fail the flow; anything slow
// belongs behind a queue.
type Observer interface {
	// OnTransition is called after a transition has been applied.
	OnTransition(ctx context.Context, info FlowInfo, tr Transition)

	// OnSubmission is called after every call to the submission service,
	// for both successes and failures (err != nil).
	OnSubmission(ctx context.Context, info FlowInfo, isComplete bool, err error, d time.Duration)

	// OnCollaboratorFailed is called when an external collaborator call
	// fails. op names the call ("check_email", "upload", ...).
	OnCollaboratorFailed(ctx context.Context, info FlowInfo, op string, err error)

	// OnBMIBlocked is called when Proceed or Skip is refused.
	OnBMIBlocked(ctx context.Context, info FlowInfo, bmi float64)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnTransition(ctx context.Context, info FlowInfo, tr Transition) {}
func (NoopObserver) OnSubmission(ctx context.Context, info FlowInfo, isComplete bool, err error, d time.Duration) {
}
func (NoopObserver) OnCollaboratorFailed(ctx context.Context, info FlowInfo, op string, err error) {}
func (NoopObserver) OnBMIBlocked(ctx context.Context, info FlowInfo, bmi float64)                  {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnTransition(ctx context.Context, info FlowInfo, tr Transition) {
	for _, o := range c.observers {
		o.OnTransition(ctx, info, tr)
	}
}

func (c *CompositeObserver) OnSubmission(ctx context.Context, info FlowInfo, isComplete bool, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnSubmission(ctx, info, isComplete, err, d)
	}
}

func (c *CompositeObserver) OnCollaboratorFailed(ctx context.Context, info FlowInfo, op string, err error) {
	for _, o := range c.observers {
		o.OnCollaboratorFailed(ctx, info, op, err)
	}
}

func (c *CompositeObserver) OnBMIBlocked(ctx context.Context, info FlowInfo, bmi float64) {
	for _, o := range c.observers {
		o.OnBMIBlocked(ctx, info, bmi)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs flow lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnTransition(ctx context.Context, info FlowInfo, tr Transition) {
	o.Logger.InfoContext(ctx, "flow_transition",
		slog.String("survey_id", info.SurveyID),
		slog.String("session_id", info.SessionID),
		slog.String("category", string(info.Category)),
		slog.String("transition", string(tr.Kind)),
		slog.Int("from", tr.From),
		slog.Int("to", tr.To),
		slog.String("phase", string(info.Phase)),
	)
}

func (o *LoggingObserver) OnSubmission(ctx context.Context, info FlowInfo, isComplete bool, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "step_submitted",
		slog.String("survey_id", info.SurveyID),
		slog.String("session_id", info.SessionID),
		slog.Int("position", info.Position),
		slog.Bool("is_complete", isComplete),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnCollaboratorFailed(ctx context.Context, info FlowInfo, op string, err error) {
	o.Logger.WarnContext(ctx, "collaborator_failed",
		slog.String("survey_id", info.SurveyID),
		slog.String("session_id", info.SessionID),
		slog.String("op", op),
		slog.Int("position", info.Position),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnBMIBlocked(ctx context.Context, info FlowInfo, bmi float64) {
	o.Logger.InfoContext(ctx, "bmi_blocked",
		slog.String("survey_id", info.SurveyID),
		slog.String("session_id", info.SessionID),
		slog.Int("position", info.Position),
		slog.Float64("bmi", bmi),
	)
}

// BasicMetrics collects simple counters.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	transitions       atomic.Int64
	submissions       atomic.Int64
	submissionsFailed atomic.Int64
	collaboratorFails atomic.Int64
	loginRedirects    atomic.Int64
	bmiBlocks         atomic.Int64
	completions       atomic.Int64
	totalSubmitTime   atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	Transitions          int64
	Submissions          int64
	SubmissionsFailed    int64
	CollaboratorFailures int64
	LoginRedirects       int64
	BMIBlocks            int64
	Completions          int64

	AvgSubmitDuration time.Duration
}

func (m *BasicMetrics) OnTransition(ctx context.Context, info FlowInfo, tr Transition) {
	m.transitions.Add(1)
	switch tr.Kind {
	case TransitionLoginRedirect:
		m.loginRedirects.Add(1)
	case TransitionCompleted:
		m.completions.Add(1)
	}
}

func (m *BasicMetrics) OnSubmission(ctx context.Context, info FlowInfo, isComplete bool, err error, d time.Duration) {
	if err != nil {
		m.submissionsFailed.Add(1)
		return
	}
	m.submissions.Add(1)
	m.totalSubmitTime.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnCollaboratorFailed(ctx context.Context, info FlowInfo, op string, err error) {
	m.collaboratorFails.Add(1)
}

func (m *BasicMetrics) OnBMIBlocked(ctx context.Context, info FlowInfo, bmi float64) {
	m.bmiBlocks.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	subs := m.submissions.Load()
	totalNs := m.totalSubmitTime.Load()

	var avg time.Duration
	if subs > 0 {
		avg = time.Duration(totalNs / subs)
	}

	return BasicMetricsSnapshot{
		Transitions:          m.transitions.Load(),
		Submissions:          subs,
		SubmissionsFailed:    m.submissionsFailed.Load(),
		CollaboratorFailures: m.collaboratorFails.Load(),
		LoginRedirects:       m.loginRedirects.Load(),
		BMIBlocks:            m.bmiBlocks.Load(),
		Completions:          m.completions.Load(),
		AvgSubmitDuration:    avg,
	}
}
