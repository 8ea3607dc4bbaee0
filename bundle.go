package intakeflow

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/petrijr/intakeflow/internal/flow"
	"github.com/petrijr/intakeflow/pkg/api"
)

// Bundle wires a Controller together with structured logging, basic
// metrics and, when a sink is given, an AnalyticsRunner feeding it.
type Bundle struct {
	Controller *Controller
	Metrics    *BasicMetrics

	// Analytics is nil when the bundle was built without a sink.
	Analytics *AnalyticsRunner
}

// NewBundle builds a Bundle around cfg. An Observer already set on cfg is
// kept alongside the logging and metrics observers.
func NewBundle(cfg Config, logger *slog.Logger, sink EventSink) (*Bundle, error) {
	metrics := &api.BasicMetrics{}
	cfg.Observer = api.NewCompositeObserver(cfg.Observer, api.NewLoggingObserver(logger), metrics)

	var runner *AnalyticsRunner
	if sink != nil {
		runner = NewAnalyticsRunner(sink, logger, 0)
		cfg.Events = runner.Sink()
	}

	c, err := flow.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Bundle{Controller: c, Metrics: metrics, Analytics: runner}, nil
}

// NewSQLiteBundle is NewBundle with the durable state kept in db.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:intake.db?_pragma=journal_mode(WAL)")
//	bundle, err := intakeflow.NewSQLiteBundle(db, cfg, logger, sink)
//	if err := bundle.Start(ctx); err != nil { ... }
//	defer bundle.Close()
func NewSQLiteBundle(db *sql.DB, cfg Config, logger *slog.Logger, sink EventSink) (*Bundle, error) {
	st, err := NewSQLiteStorage(db)
	if err != nil {
		return nil, err
	}
	cfg.Storage = st
	return NewBundle(cfg, logger, sink)
}

// Start starts analytics delivery and mounts the controller. If the mount
// fails, analytics delivery is stopped again.
func (b *Bundle) Start(ctx context.Context) error {
	if b.Analytics != nil {
		if err := b.Analytics.Start(ctx, 1); err != nil {
			return err
		}
	}
	if err := b.Controller.Mount(ctx); err != nil {
		b.Close()
		return err
	}
	return nil
}

// Close stops analytics delivery, flushing queued events.
func (b *Bundle) Close() {
	if b.Analytics != nil {
		b.Analytics.Stop()
	}
}
