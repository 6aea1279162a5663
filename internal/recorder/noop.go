package recorder

import "harmonic-scanner/internal/tracker"

// NoopRecorder is a no-op implementation used when no database is
// configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPatterns(_ []*tracker.TrackedPattern) error { return nil }
func (n *NoopRecorder) RecordEvents(_ []tracker.Event) error             { return nil }
func (n *NoopRecorder) Close() error                                     { return nil }
