package tracking

import (
	"context"
	"log/slog"

	"github.com/petrijr/intakeflow/pkg/api"
)

// LogSink writes every event as a structured log record. It is the
// development stand-in for a vendor analytics client.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Track(ctx context.Context, ev api.FlowEvent) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "flow_event",
		slog.String("event", string(ev.Type)),
		slog.String("survey_id", ev.SurveyID),
		slog.String("category", string(ev.Category)),
		slog.String("session_id", ev.SessionID),
		slog.Int("position", ev.Position),
		slog.String("detail", ev.Detail),
		slog.Time("at", ev.At),
	)
	return nil
}
