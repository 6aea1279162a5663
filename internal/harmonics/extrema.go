package harmonics

import (
	"harmonic-scanner/internal/models"
)

// DetectExtrema scans the series and returns all pivot points for the given
// symmetric window. Bar i yields a High point when its high is >= every
// high within window bars on both sides (ties inclusive), and independently
// a Low point when its low is <= every low in the same neighborhood. A bar
// may therefore yield both kinds; when it does, the High point is listed
// first. The first and last window bars can never be pivots.
//
// A window larger than half the series length yields an empty list, not an
// error.
func DetectExtrema(s *models.Series, window int) []models.ExtremumPoint {
	if window < 1 || s.Len() < 2*window+1 {
		return nil
	}
	bars := s.Bars()
	out := make([]models.ExtremumPoint, 0, len(bars)/4)
	for i := window; i < len(bars)-window; i++ {
		if hi, lo := pivotAt(bars, i, window); hi || lo {
			if hi {
				out = append(out, models.ExtremumPoint{BarIndex: bars[i].Index, Price: bars[i].High, Kind: models.KindHigh})
			}
			if lo {
				out = append(out, models.ExtremumPoint{BarIndex: bars[i].Index, Price: bars[i].Low, Kind: models.KindLow})
			}
		}
	}
	return out
}

// pivotAt evaluates the High and Low pivot conditions for position i over a
// full symmetric window. Both conditions are checked independently.
func pivotAt(bars []models.Bar, i, window int) (isHigh, isLow bool) {
	isHigh, isLow = true, true
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}
		if bars[j].High > bars[i].High {
			isHigh = false
		}
		if bars[j].Low < bars[i].Low {
			isLow = false
		}
		if !isHigh && !isLow {
			return false, false
		}
	}
	return isHigh, isLow
}

// ConfirmPivot evaluates the pivot conditions for position p when only
// bars up to position p+window exist, which is the earliest bar at which
// the pivot is observable. Used by the incremental pipeline.
func ConfirmPivot(bars []models.Bar, p, window int) (isHigh, isLow bool) {
	if p < window || p+window > len(bars)-1 {
		return false, false
	}
	return pivotAt(bars, p, window)
}

// Alternating collapses consecutive same-kind points to the most extreme
// one: the highest High among Highs, the lowest Low among Lows. The
// earliest point wins price ties. Candidate enumeration assumes this view.
func Alternating(points []models.ExtremumPoint) []models.ExtremumPoint {
	if len(points) == 0 {
		return nil
	}
	out := make([]models.ExtremumPoint, 0, len(points))
	for _, p := range points {
		out = AppendAlternating(out, p)
	}
	return out
}

// AppendAlternating extends an alternating pivot list with one more point,
// applying the same-kind coalescing rule.
func AppendAlternating(alt []models.ExtremumPoint, p models.ExtremumPoint) []models.ExtremumPoint {
	n := len(alt)
	if n == 0 {
		return append(alt, p)
	}
	tail := alt[n-1]
	if tail.Kind != p.Kind {
		return append(alt, p)
	}
	if (p.Kind == models.KindHigh && p.Price > tail.Price) ||
		(p.Kind == models.KindLow && p.Price < tail.Price) {
		alt[n-1] = p
	}
	return alt
}
