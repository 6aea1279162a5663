package tracker

import (
	"testing"

	"harmonic-scanner/internal/harmonics"
	"harmonic-scanner/internal/models"
)

func testConfig() Config {
	return Config{MinReversalExcursion: 0.382, InvalidationMargin: 0.236}
}

// bullishHypothesis projects a completion zone of [115, 116] above C at
// 105. Zone midpoint 115.5 gives a final leg of 10.5, so the failure
// threshold is 118.478 and the success threshold 110.989.
func bullishHypothesis() harmonics.Hypothesis {
	skel := harmonics.Skeleton{Arity: harmonics.ArityABCD, Points: []harmonics.PatternPoint{
		{BarIndex: 0, Price: 100, Kind: models.KindLow},
		{BarIndex: 5, Price: 120, Kind: models.KindHigh},
		{BarIndex: 10, Price: 105, Kind: models.KindLow},
	}}
	return harmonics.Hypothesis{
		Skeleton:  skel,
		Direction: models.Bullish,
		Name:      "AB=CD",
		Ratios:    map[string]float64{harmonics.RatioBCAB: 0.75},
		Zones:     []harmonics.ZoneProjection{{Low: 115, High: 116, SourceName: "AB=CD"}},
		Identity:  "test-bullish",
	}
}

func advBar(t *testing.T, tr *Tracker, index int, open, high, low float64) []Event {
	t.Helper()
	return tr.Advance(models.Bar{Index: index, Open: open, High: high, Low: low, Close: open})
}

func TestObserveIdempotent(t *testing.T) {
	tr := New(testConfig())
	first := tr.Observe(bullishHypothesis(), 11)
	second := tr.Observe(bullishHypothesis(), 15)

	if first != second {
		t.Fatal("re-observing an identity must return the existing record")
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
	if first.CreatedBar != 11 {
		t.Fatalf("CreatedBar = %d, want the first observation bar", first.CreatedBar)
	}
	if first.Status != StatusPending {
		t.Fatalf("Status = %s, want pending", first.Status)
	}
}

func TestLifecycleSuccess(t *testing.T) {
	tr := New(testConfig())
	p := tr.Observe(bullishHypothesis(), 11)

	if evts := advBar(t, tr, 11, 112, 114, 108); len(evts) != 0 {
		t.Fatalf("below the zone: unexpected events %v", evts)
	}

	evts := advBar(t, tr, 12, 113, 115.5, 112)
	if len(evts) != 1 || evts[0].NewStatus != StatusInZone {
		t.Fatalf("zone entry events = %v", evts)
	}
	if p.ZoneEntryBar != 12 || p.ZoneEntryPrice != 112 {
		t.Fatalf("entry = bar %d at %v, want bar 12 at the bar low", p.ZoneEntryBar, p.ZoneEntryPrice)
	}

	if evts := advBar(t, tr, 13, 114, 116, 111.5); len(evts) != 0 {
		t.Fatalf("inside the zone: unexpected events %v", evts)
	}

	evts = advBar(t, tr, 14, 112, 113, 110)
	if len(evts) != 1 || evts[0].NewStatus != StatusSuccess {
		t.Fatalf("reversal events = %v", evts)
	}
	if p.CompletionBar != 14 || p.CompletionPrice != 110 {
		t.Fatalf("completion = bar %d at %v, want bar 14 at 110", p.CompletionBar, p.CompletionPrice)
	}
	if !p.Status.Terminal() {
		t.Fatal("success must be terminal")
	}
}

func TestLifecycleFailureWinsOverSuccess(t *testing.T) {
	tr := New(testConfig())
	p := tr.Observe(bullishHypothesis(), 11)

	advBar(t, tr, 12, 113, 115.5, 112)

	// One wide bar crosses both the failure and the reversal threshold.
	evts := advBar(t, tr, 13, 114, 119, 110)
	if len(evts) != 1 || evts[0].NewStatus != StatusFailed {
		t.Fatalf("ambiguous bar events = %v, want failed", evts)
	}
	if p.CompletionPrice != 119 {
		t.Fatalf("failure completion price = %v, want the breaking high", p.CompletionPrice)
	}
}

func TestDismissalOnUpdatedC(t *testing.T) {
	tr := New(testConfig())
	p := tr.Observe(bullishHypothesis(), 11)

	evts := advBar(t, tr, 12, 107, 110, 104)
	if len(evts) != 1 || evts[0].NewStatus != StatusDismissed {
		t.Fatalf("events = %v, want dismissal", evts)
	}
	if p.DismissalReason != "updated C" || p.CUpdateBar != 12 {
		t.Fatalf("dismissal = %q at bar %d", p.DismissalReason, p.CUpdateBar)
	}

	// Terminal: later bars change nothing.
	if evts := advBar(t, tr, 13, 113, 115.5, 112); len(evts) != 0 {
		t.Fatalf("dismissed pattern produced events %v", evts)
	}
}

func TestZoneEntryBeatsSameBarDismissal(t *testing.T) {
	tr := New(testConfig())
	p := tr.Observe(bullishHypothesis(), 11)

	// The bar both undercuts C and reaches the zone. Entry wins over the
	// dismissal, and the same bar's excursion below the zone then resolves
	// the pattern in one step.
	evts := advBar(t, tr, 12, 110, 115.5, 104)
	if len(evts) != 2 || evts[0].NewStatus != StatusInZone || evts[1].NewStatus != StatusSuccess {
		t.Fatalf("events = %v, want entry then success", evts)
	}
	if p.Status == StatusDismissed {
		t.Fatal("zone entry must beat a same-bar C update")
	}
	if p.ZoneEntryBar != 12 || p.CompletionBar != 12 {
		t.Fatalf("entry bar %d, completion bar %d, want both 12", p.ZoneEntryBar, p.CompletionBar)
	}
}

func TestAdvanceIgnoresReplayedBars(t *testing.T) {
	tr := New(testConfig())
	tr.Observe(bullishHypothesis(), 11)

	advBar(t, tr, 12, 112, 114, 108)
	if evts := advBar(t, tr, 12, 113, 115.5, 112); evts != nil {
		t.Fatalf("replayed bar produced events %v", evts)
	}
	if evts := advBar(t, tr, 11, 113, 115.5, 112); evts != nil {
		t.Fatalf("older bar produced events %v", evts)
	}
}

func TestTouchTracking(t *testing.T) {
	tr := New(testConfig())
	p := tr.Observe(bullishHypothesis(), 11)

	// Skeleton range is [100, 120]: fib_23.6 = 115.28, fib_38.2 = 112.36.
	advBar(t, tr, 12, 113, 115.5, 112)

	find := func(name string) *Touch {
		for i := range p.Touches {
			if p.Touches[i].LevelName == name {
				return &p.Touches[i]
			}
		}
		return nil
	}

	fib236 := find("fib_23.6")
	if fib236 == nil {
		t.Fatalf("fib_23.6 not touched; touches = %+v", p.Touches)
	}
	if fib236.Kind != TouchFromBelow || fib236.BarIndex != 12 || fib236.Count != 1 {
		t.Fatalf("fib_23.6 = %+v", *fib236)
	}
	fib382 := find("fib_38.2")
	if fib382 == nil || fib382.Kind != TouchFromAbove {
		t.Fatalf("fib_38.2 = %+v", fib382)
	}

	// Second crossing increments the counter, first-touch fields stay.
	advBar(t, tr, 13, 114, 116, 111.5)
	if fib236 = find("fib_23.6"); fib236.Count != 2 || fib236.BarIndex != 12 {
		t.Fatalf("after recross fib_23.6 = %+v", *fib236)
	}

	if find("B") != nil {
		t.Fatal("B at 120 was never reached")
	}
}

func TestPatternsOrder(t *testing.T) {
	tr := New(testConfig())
	h1 := bullishHypothesis()
	h2 := bullishHypothesis()
	h2.Identity = "test-bullish-2"
	h2.Name = "ABCD"

	tr.Observe(h1, 11)
	tr.Observe(h2, 12)

	got := tr.Patterns()
	if len(got) != 2 || got[0].Identity != "test-bullish" || got[1].Identity != "test-bullish-2" {
		t.Fatalf("patterns out of observation order: %v, %v", got[0].Identity, got[1].Identity)
	}
	if _, ok := tr.Get("test-bullish-2"); !ok {
		t.Fatal("Get missed a tracked identity")
	}
}
