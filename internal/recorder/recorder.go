// Package recorder persists scan results for external reporting. The core
// pipeline never imports it; callers hand it plain tracked records through
// this narrow interface.
package recorder

import (
	"harmonic-scanner/internal/tracker"
)

// Recorder persists tracked patterns and their lifecycle events.
type Recorder interface {
	RecordPatterns(patterns []*tracker.TrackedPattern) error
	RecordEvents(events []tracker.Event) error
	Close() error
}
