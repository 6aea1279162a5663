// Package tracker owns the mutable lifecycle records of surviving pattern
// hypotheses. All other pipeline components are pure; the Tracker is the
// single serialization point and must be driven from one goroutine.
package tracker

import (
	"math"

	"harmonic-scanner/internal/harmonics"
	"harmonic-scanner/internal/models"
)

// Status is the lifecycle state of a tracked pattern.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInZone    Status = "in_zone"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusDismissed Status = "dismissed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusDismissed
}

// TrackedPattern is the mutable lifecycle record for one hypothesis. It is
// created the first bar the hypothesis is observed and only ever
// transitions forward; records are never deleted.
type TrackedPattern struct {
	Identity        string
	Name            string
	Direction       models.Direction
	Skeleton        harmonics.Skeleton
	Ratios          map[string]float64
	Zones           []harmonics.ZoneProjection
	Status          Status
	CreatedBar      int
	ZoneEntryBar    int
	ZoneEntryPrice  float64
	CompletionBar   int
	CompletionPrice float64
	DismissalReason string
	CUpdateBar      int
	Touches         []Touch

	envelope harmonics.ZoneProjection
	levels   []fibLevel
}

// Event is one status change produced by a single bar.
type Event struct {
	Identity  string
	OldStatus Status
	NewStatus Status
	BarIndex  int
}

// Config holds the lifecycle thresholds. Both are fractions of the final
// leg height (distance from C to the zone midpoint).
type Config struct {
	MinReversalExcursion float64
	InvalidationMargin   float64
}

// Tracker advances tracked patterns bar by bar. Evaluation is monotonic in
// bar index: re-running over a longer series reproduces identical
// transitions for bars already seen.
type Tracker struct {
	cfg      Config
	patterns map[string]*TrackedPattern
	order    []string
	lastBar  int
	started  bool
}

// New creates an empty tracker context. The caller owns it; there is no
// process-wide tracker state.
func New(cfg Config) *Tracker {
	return &Tracker{
		cfg:      cfg,
		patterns: make(map[string]*TrackedPattern),
	}
}

// Observe registers a hypothesis, idempotently: re-detecting an identity
// already tracked returns the existing record unchanged, so overlapping
// scans never duplicate entities.
func (t *Tracker) Observe(h harmonics.Hypothesis, barIndex int) *TrackedPattern {
	if p, ok := t.patterns[h.Identity]; ok {
		return p
	}
	p := &TrackedPattern{
		Identity:   h.Identity,
		Name:       h.Name,
		Direction:  h.Direction,
		Skeleton:   h.Skeleton,
		Ratios:     h.Ratios,
		Zones:      h.Zones,
		Status:     StatusPending,
		CreatedBar: barIndex,
		levels:     buildLevels(h.Skeleton),
	}
	if env, ok := harmonics.Envelope(h.Zones); ok {
		p.envelope = env
	}
	t.patterns[h.Identity] = p
	t.order = append(t.order, h.Identity)
	return p
}

// Advance evaluates every live pattern against one new bar and returns the
// status changes it produced. Bars at or before the last evaluated index
// are ignored, keeping replays idempotent.
func (t *Tracker) Advance(bar models.Bar) []Event {
	if t.started && bar.Index <= t.lastBar {
		return nil
	}
	t.started = true
	t.lastBar = bar.Index

	var events []Event
	for _, id := range t.order {
		p := t.patterns[id]
		if bar.Index < p.CreatedBar {
			continue
		}
		switch p.Status {
		case StatusPending:
			events = t.advancePending(p, bar, events)
		case StatusInZone:
			p.recordTouches(bar)
			events = t.advanceInZone(p, bar, events)
		case StatusSuccess:
			// Touch tracking continues after a successful completion; it
			// never changes lifecycle state.
			p.recordTouches(bar)
		}
	}
	return events
}

func (t *Tracker) advancePending(p *TrackedPattern, bar models.Bar, events []Event) []Event {
	if len(p.Zones) > 0 && bar.Low <= p.envelope.High && bar.High >= p.envelope.Low {
		// Zone entry wins over a same-bar C update: the structure reached
		// its completion band on this bar.
		p.Status = StatusInZone
		p.ZoneEntryBar = bar.Index
		if p.Direction == models.Bullish {
			p.ZoneEntryPrice = bar.Low
		} else {
			p.ZoneEntryPrice = bar.High
		}
		events = append(events, Event{p.Identity, StatusPending, StatusInZone, bar.Index})
		p.recordTouches(bar)
		return t.advanceInZone(p, bar, events)
	}

	// A more extreme point of the same kind as C retires the hypothesis:
	// its C has been superseded and a fresh candidate will carry the update.
	c := p.Skeleton.CPoint()
	updated := (c.Kind == models.KindLow && bar.Low < c.Price) ||
		(c.Kind == models.KindHigh && bar.High > c.Price)
	if updated {
		p.Status = StatusDismissed
		p.DismissalReason = "updated C"
		p.CUpdateBar = bar.Index
		events = append(events, Event{p.Identity, StatusPending, StatusDismissed, bar.Index})
	}
	return events
}

func (t *Tracker) advanceInZone(p *TrackedPattern, bar models.Bar, events []Event) []Event {
	leg := math.Abs((p.envelope.Low+p.envelope.High)/2 - p.Skeleton.CPoint().Price)
	breakMargin := t.cfg.InvalidationMargin * leg
	reversal := t.cfg.MinReversalExcursion * leg

	var failed, succeeded bool
	var completion float64
	if p.Direction == models.Bullish {
		// The zone sits above C; breaking through means continuing up past
		// it, a reversal means turning back below it.
		failed = bar.High > p.envelope.High+breakMargin
		succeeded = bar.Low < p.envelope.Low-reversal
		completion = bar.High
		if !failed {
			completion = bar.Low
		}
	} else {
		failed = bar.Low < p.envelope.Low-breakMargin
		succeeded = bar.High > p.envelope.High+reversal
		completion = bar.Low
		if !failed {
			completion = bar.High
		}
	}

	// A bar satisfying both resolves as Failed: an adverse break is not
	// given the benefit of the doubt.
	switch {
	case failed:
		p.Status = StatusFailed
	case succeeded:
		p.Status = StatusSuccess
	default:
		return events
	}
	p.CompletionBar = bar.Index
	p.CompletionPrice = completion
	return append(events, Event{p.Identity, StatusInZone, p.Status, bar.Index})
}

// Get returns the tracked record for an identity.
func (t *Tracker) Get(identity string) (*TrackedPattern, bool) {
	p, ok := t.patterns[identity]
	return p, ok
}

// Patterns returns every tracked record in first-observation order. The
// records are tracker-owned; callers must not mutate them.
func (t *Tracker) Patterns() []*TrackedPattern {
	out := make([]*TrackedPattern, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.patterns[id])
	}
	return out
}

// Len returns the number of tracked records.
func (t *Tracker) Len() int {
	return len(t.order)
}
