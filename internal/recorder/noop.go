package recorder

import "context"

// NoopRecorder is used when no journal path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordLoad(_ context.Context, _ *LoadEvent) error { return nil }
func (n *NoopRecorder) Close() error                                     { return nil }

func (n *NoopRecorder) Recent(_ context.Context, _ int) ([]LoadEvent, error) {
	return []LoadEvent{}, nil
}
