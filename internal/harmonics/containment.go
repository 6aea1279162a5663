package harmonics

import (
	"harmonic-scanner/internal/models"
)

// ValidateContainment replays the bar series between structural points and
// reports whether the skeleton survives strict validation: no bar inside a
// leg may price-exceed a structural point in that point's own direction.
// Concretely, for each point P(i) the closed bar-index range from P(i-1)
// (or P(0)) through P(i+1) must contain no high above P(i) when P(i) is a
// High, and no low below it when P(i) is a Low. Ties are allowed.
//
// For an unformed skeleton the open leg is checked through confirmIndex,
// the bar at which the final pivot became observable: past C no bar may
// exceed C in C's kind, nor the prior point B in B's kind. Evaluating the
// open leg only up to the confirmation bar keeps hypothesis creation a pure
// function of the bar prefix, so batch and incremental scans agree.
//
// Each rule range is scanned once with a running min/max; total work is
// linear in the skeleton's bar span.
func ValidateContainment(s *models.Series, skel Skeleton, confirmIndex int) bool {
	pts := skel.Points
	if len(pts) < 2 {
		return false
	}
	for i, p := range pts {
		lo := pts[0].BarIndex
		if i > 0 {
			lo = pts[i-1].BarIndex
		}
		var hi int
		switch {
		case i+1 < len(pts):
			hi = pts[i+1].BarIndex
		case skel.Formed():
			hi = p.BarIndex
		default:
			hi = confirmIndex
		}
		if exceeds(s, lo, hi, p) {
			return false
		}
	}
	if !skel.Formed() {
		// Open leg: between C and its confirmation bar the prior opposite
		// extreme must also hold, else the structure was already overrun
		// before it could be observed.
		c := pts[len(pts)-1]
		prev := pts[len(pts)-2]
		if confirmIndex > c.BarIndex && exceeds(s, c.BarIndex+1, confirmIndex, prev) {
			return false
		}
	}
	return true
}

// exceeds reports whether any bar in [fromIdx, toIdx] goes strictly beyond
// point p in p's kind direction.
func exceeds(s *models.Series, fromIdx, toIdx int, p PatternPoint) bool {
	minLow, maxHigh, ok := s.RangeExtremes(fromIdx, toIdx)
	if !ok {
		return false
	}
	if p.Kind == models.KindHigh {
		return maxHigh > p.Price
	}
	return minLow < p.Price
}
