package tracker

import (
	"fmt"

	"harmonic-scanner/internal/harmonics"
	"harmonic-scanner/internal/models"
)

// TouchKind records which side a level was first approached from.
type TouchKind string

const (
	TouchFromAbove TouchKind = "from_above"
	TouchFromBelow TouchKind = "from_below"
)

// Touch is the first crossing of one named level after zone entry. Later
// crossings only increment Count; the first-touch fields never change.
type Touch struct {
	LevelName  string
	LevelPrice float64
	BarIndex   int
	Kind       TouchKind
	Count      int
}

// fibLevel is one named price level derived from the skeleton.
type fibLevel struct {
	name  string
	price float64
}

// fibRatios are the retracement percentages tracked between the skeleton's
// price extremes, alongside the structural point prices themselves.
var fibRatios = []float64{0.236, 0.382, 0.500, 0.618, 0.786}

// buildLevels derives the named level set once per tracked pattern: each
// structural point's price under its role name, plus Fibonacci retracements
// of the skeleton's full price range measured down from its high.
func buildLevels(skel harmonics.Skeleton) []fibLevel {
	names := skel.PointNames()
	levels := make([]fibLevel, 0, len(skel.Points)+len(fibRatios))
	for i, p := range skel.Points {
		levels = append(levels, fibLevel{name: names[i], price: p.Price})
	}
	lo, hi := skel.PriceRange()
	for _, r := range fibRatios {
		levels = append(levels, fibLevel{
			name:  fmt.Sprintf("fib_%.1f", r*100),
			price: hi - r*(hi-lo),
		})
	}
	return levels
}

// recordTouches registers every level the bar's range crosses. The first
// crossing of a level stores the full touch record; subsequent crossings
// increment its counter.
func (p *TrackedPattern) recordTouches(bar models.Bar) {
	for _, lvl := range p.levels {
		if bar.Low > lvl.price || bar.High < lvl.price {
			continue
		}
		if i := p.touchIndex(lvl.name); i >= 0 {
			p.Touches[i].Count++
			continue
		}
		kind := TouchFromBelow
		if bar.Open > lvl.price {
			kind = TouchFromAbove
		}
		p.Touches = append(p.Touches, Touch{
			LevelName:  lvl.name,
			LevelPrice: lvl.price,
			BarIndex:   bar.Index,
			Kind:       kind,
			Count:      1,
		})
	}
}

func (p *TrackedPattern) touchIndex(name string) int {
	for i := range p.Touches {
		if p.Touches[i].LevelName == name {
			return i
		}
	}
	return -1
}
