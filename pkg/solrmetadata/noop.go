package solrmetadata

import "context"

// NoopEventSink is an event sink that does nothing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-op event sink
func NewNoopEventSink() *NoopEventSink {
	return &NoopEventSink{}
}

func (s *NoopEventSink) ConfigurationCreated(ctx context.Context, event ChangeEvent) error {
	return nil
}

func (s *NoopEventSink) ConfigurationUpdated(ctx context.Context, event ChangeEvent) error {
	return nil
}

func (s *NoopEventSink) ConfigurationDeleted(ctx context.Context, event ChangeEvent) error {
	return nil
}
