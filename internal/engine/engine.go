// Package engine wires the detection pipeline together: extremum
// confirmation, candidate enumeration, ratio classification, containment
// validation, zone projection and lifecycle tracking, driven one bar at a
// time. Batch evaluation runs the same per-bar path over the whole series,
// which is what guarantees that backtest and incremental scans of the same
// data always agree.
package engine

import (
	"github.com/rs/zerolog"

	"harmonic-scanner/internal/config"
	"harmonic-scanner/internal/harmonics"
	"harmonic-scanner/internal/logging"
	"harmonic-scanner/internal/models"
	"harmonic-scanner/internal/tracker"
)

// Engine holds the immutable scan parameters and definition table.
type Engine struct {
	scan config.ScanConfig
	life tracker.Config
	defs []harmonics.Definition
	log  zerolog.Logger
}

// New validates the configuration, applies tolerance overrides to the
// definition table and returns a ready engine.
func New(cfg *config.Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	defs := harmonics.DefaultDefinitions()
	for _, o := range cfg.Tolerances {
		band := harmonics.RatioBand{Min: o.Min, Max: o.Max}
		if err := harmonics.ApplyOverride(defs, o.Pattern, o.Leg, band); err != nil {
			return nil, err
		}
	}
	return &Engine{
		scan: cfg.Scan,
		life: tracker.Config{
			MinReversalExcursion: cfg.Lifecycle.MinReversalExcursion,
			InvalidationMargin:   cfg.Lifecycle.InvalidationMargin,
		},
		defs: defs,
		log:  logger,
	}, nil
}

// Definitions returns the engine's pattern table after overrides.
func (e *Engine) Definitions() []harmonics.Definition {
	return e.defs
}

// Run is the caller-owned mutable state of one scan. There is no
// process-wide state; two concurrent runs never interact.
type Run struct {
	series   *models.Series
	alt      []models.ExtremumPoint
	tracker  *tracker.Tracker
	observed int
	capped   bool
}

// NewRun creates an empty run context.
func (e *Engine) NewRun() *Run {
	s, _ := models.NewSeries(nil)
	return &Run{
		series:  s,
		tracker: tracker.New(e.life),
	}
}

// Tracker exposes the run's lifecycle state.
func (r *Run) Tracker() *tracker.Tracker {
	return r.tracker
}

// Patterns returns the tracked patterns in first-observation order.
func (r *Run) Patterns() []*tracker.TrackedPattern {
	return r.tracker.Patterns()
}

// Step ingests one new bar: it confirms any pivot that became observable,
// enumerates and classifies the candidates ending at it, validates and
// projects the survivors, registers them, and advances every live pattern.
// It returns the status-change events this bar produced. Malformed bars
// (out-of-order index, non-finite prices) are rejected with an error before
// any state changes.
func (e *Engine) Step(run *Run, bar models.Bar) ([]tracker.Event, error) {
	if err := run.series.Append(bar); err != nil {
		return nil, err
	}

	bars := run.series.Bars()
	w := e.scan.PivotWindow
	p := len(bars) - 1 - w
	if p >= w {
		isHigh, isLow := harmonics.ConfirmPivot(bars, p, w)
		if isHigh {
			e.onPivot(run, models.ExtremumPoint{BarIndex: bars[p].Index, Price: bars[p].High, Kind: models.KindHigh}, bar.Index)
		}
		if isLow {
			e.onPivot(run, models.ExtremumPoint{BarIndex: bars[p].Index, Price: bars[p].Low, Kind: models.KindLow}, bar.Index)
		}
	}

	return run.tracker.Advance(bar), nil
}

// onPivot folds a confirmed pivot into the alternating view and, when the
// view's tail changed, generates the candidates ending at it.
func (e *Engine) onPivot(run *Run, pt models.ExtremumPoint, confirmIndex int) {
	prevLen, prevTail := len(run.alt), models.ExtremumPoint{}
	if prevLen > 0 {
		prevTail = run.alt[prevLen-1]
	}
	run.alt = harmonics.AppendAlternating(run.alt, pt)
	if len(run.alt) == prevLen && run.alt[len(run.alt)-1] == prevTail {
		return // coalesced away: a less extreme same-kind pivot
	}

	for _, size := range []int{3, 4} {
		for _, skel := range e.enumerate(run, size) {
			run.observed++
			hyps := harmonics.Classify(skel, e.defs)
			if len(hyps) == 0 {
				continue
			}
			if !harmonics.ValidateContainment(run.series, skel, confirmIndex) {
				e.log.Debug().
					Int("c_bar", skel.CPoint().BarIndex).
					Str("arity", string(skel.Arity)).
					Msg("candidate rejected by containment")
				continue
			}
			for _, hyp := range hyps {
				harmonics.ProjectZones(&hyp, e.defs)
				known := run.tracker.Len()
				run.tracker.Observe(hyp, confirmIndex)
				if run.tracker.Len() > known {
					plog := logging.WithPattern(e.log, hyp.Identity, hyp.Name)
					plog.Debug().
						Str("direction", string(hyp.Direction)).
						Int("confirm_bar", confirmIndex).
						Msg("hypothesis tracked")
				}
			}
		}
	}
}

// enumerate applies the remaining candidate budget to the tuples ending at
// the current alternating tail.
func (e *Engine) enumerate(run *Run, size int) []harmonics.Skeleton {
	opts := harmonics.EnumerateOptions{MaxWindow: e.scan.MaxSearchWindow}
	if e.scan.MaxCandidates > 0 {
		remaining := e.scan.MaxCandidates - run.observed
		if remaining <= 0 {
			if !run.capped {
				run.capped = true
				e.log.Warn().Int("max_candidates", e.scan.MaxCandidates).Msg("candidate cap reached; truncating enumeration")
			}
			return nil
		}
		opts.MaxCandidates = remaining
	}
	return harmonics.EnumerateEndingAt(run.alt, size, opts)
}

// ScanBatch runs the full pipeline over a complete series and returns the
// tracked patterns plus every status-change event, in order. Running it
// twice over the same series and configuration yields identical results.
func (e *Engine) ScanBatch(series *models.Series) ([]*tracker.TrackedPattern, []tracker.Event, error) {
	run := e.NewRun()
	var events []tracker.Event
	for _, bar := range series.Bars() {
		evts, err := e.Step(run, bar)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, evts...)
	}
	return run.Patterns(), events, nil
}
