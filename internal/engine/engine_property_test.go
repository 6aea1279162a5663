package engine

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"harmonic-scanner/internal/config"
	"harmonic-scanner/internal/models"
	"harmonic-scanner/internal/tracker"
)

func walkSeries(mids []float64) *models.Series {
	bars := make([]models.Bar, len(mids))
	price := 100.0
	for i, step := range mids {
		price += step
		bars[i] = models.Bar{Index: i, Open: price, High: price + 1.5, Low: price - 1.5, Close: price}
	}
	s, _ := models.NewSeries(bars)
	return s
}

func propEngine(window int) (*Engine, error) {
	cfg := config.Default()
	cfg.Scan.PivotWindow = window
	return New(cfg, zerolog.Nop())
}

func statusMap(patterns []*tracker.TrackedPattern) map[string]tracker.Status {
	out := make(map[string]tracker.Status, len(patterns))
	for _, p := range patterns {
		out[p.Identity] = p.Status
	}
	return out
}

func TestPropertyScanDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	stepGen := gen.SliceOfN(60, gen.Float64Range(-3, 3))
	windowGen := gen.IntRange(1, 3)

	properties.Property("batch scans are reproducible", prop.ForAll(
		func(steps []float64, window int) bool {
			s := walkSeries(steps)
			eng, err := propEngine(window)
			if err != nil {
				return false
			}
			p1, e1, err1 := eng.ScanBatch(s)
			p2, e2, err2 := eng.ScanBatch(s)
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(statusMap(p1), statusMap(p2)) &&
				reflect.DeepEqual(e1, e2)
		},
		stepGen, windowGen,
	))

	properties.Property("batch equals a per-bar replay", prop.ForAll(
		func(steps []float64, window int) bool {
			s := walkSeries(steps)
			eng, err := propEngine(window)
			if err != nil {
				return false
			}
			batchPatterns, batchEvents, err := eng.ScanBatch(s)
			if err != nil {
				return false
			}

			run := eng.NewRun()
			var streamEvents []tracker.Event
			for _, bar := range s.Bars() {
				evts, err := eng.Step(run, bar)
				if err != nil {
					return false
				}
				streamEvents = append(streamEvents, evts...)
			}

			if !reflect.DeepEqual(statusMap(batchPatterns), statusMap(run.Patterns())) {
				return false
			}
			if len(batchEvents) == 0 && len(streamEvents) == 0 {
				return true
			}
			return reflect.DeepEqual(batchEvents, streamEvents)
		},
		stepGen, windowGen,
	))

	properties.TestingRun(t)
}

func TestPropertyPrefixConvergence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("a prefix scan is a prefix of the full scan", prop.ForAll(
		func(steps []float64, window int, cut int) bool {
			s := walkSeries(steps)
			eng, err := propEngine(window)
			if err != nil {
				return false
			}

			fullPatterns, fullEvents, err := eng.ScanBatch(s)
			if err != nil {
				return false
			}
			prefixPatterns, prefixEvents, err := eng.ScanBatch(s.Prefix(cut))
			if err != nil {
				return false
			}

			// Every pattern the prefix saw exists in the full scan, created
			// on the same bar.
			full := make(map[string]*tracker.TrackedPattern, len(fullPatterns))
			for _, p := range fullPatterns {
				full[p.Identity] = p
			}
			for _, p := range prefixPatterns {
				fp, ok := full[p.Identity]
				if !ok || fp.CreatedBar != p.CreatedBar {
					return false
				}
			}

			// Events up to the cut are identical.
			var fullHead []tracker.Event
			for _, e := range fullEvents {
				if e.BarIndex < cut {
					fullHead = append(fullHead, e)
				}
			}
			if len(fullHead) == 0 && len(prefixEvents) == 0 {
				return true
			}
			return reflect.DeepEqual(fullHead, prefixEvents)
		},
		gen.SliceOfN(60, gen.Float64Range(-3, 3)), gen.IntRange(1, 3), gen.IntRange(10, 60),
	))

	properties.TestingRun(t)
}

func TestPropertyLifecycleMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("statuses only move forward", prop.ForAll(
		func(steps []float64, window int) bool {
			s := walkSeries(steps)
			eng, err := propEngine(window)
			if err != nil {
				return false
			}

			run := eng.NewRun()
			last := make(map[string]tracker.Status)
			for _, bar := range s.Bars() {
				evts, err := eng.Step(run, bar)
				if err != nil {
					return false
				}
				for _, e := range evts {
					if prev, ok := last[e.Identity]; ok {
						if prev.Terminal() {
							return false // transition out of a terminal state
						}
						if e.OldStatus != prev {
							return false // gap in the transition chain
						}
					} else if e.OldStatus != tracker.StatusPending {
						return false // first transition must leave pending
					}
					last[e.Identity] = e.NewStatus
				}
			}
			return true
		},
		gen.SliceOfN(60, gen.Float64Range(-3, 3)), gen.IntRange(1, 3),
	))

	properties.TestingRun(t)
}
