package solrmetadata

import (
	"context"
	"log/slog"
)

// LoggingEventSink logs configuration changes through slog. It is the sink
// wired by default when event logging is enabled in the server config.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink that logs to the given logger.
// A nil logger falls back to slog.Default.
func NewLoggingEventSink(logger *slog.Logger) *LoggingEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (s *LoggingEventSink) log(ctx context.Context, msg string, event ChangeEvent) {
	s.logger.InfoContext(ctx, msg,
		"event_id", event.ID,
		"configuration", event.ConfigurationName,
		"op", event.Op,
		"occurred_at", event.OccurredAt,
	)
}

func (s *LoggingEventSink) ConfigurationCreated(ctx context.Context, event ChangeEvent) error {
	s.log(ctx, "configuration created", event)
	return nil
}

func (s *LoggingEventSink) ConfigurationUpdated(ctx context.Context, event ChangeEvent) error {
	s.log(ctx, "configuration updated", event)
	return nil
}

func (s *LoggingEventSink) ConfigurationDeleted(ctx context.Context, event ChangeEvent) error {
	s.log(ctx, "configuration deleted", event)
	return nil
}
