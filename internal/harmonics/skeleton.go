// Package harmonics implements detection, classification and validation of
// harmonic price patterns (ABCD and XABCD structures).
package harmonics

import (
	"fmt"
	"hash/fnv"

	"harmonic-scanner/internal/models"
)

// Arity distinguishes four-point ABCD structures from five-point XABCD ones.
type Arity string

const (
	ArityABCD  Arity = "abcd"
	ArityXABCD Arity = "xabcd"
)

// points returns the number of structural points a formed pattern of this
// arity carries.
func (a Arity) points() int {
	if a == ArityXABCD {
		return 5
	}
	return 4
}

// PatternPoint is one structural point of a skeleton.
type PatternPoint struct {
	BarIndex int
	Price    float64
	Kind     models.PointKind
}

// Skeleton is an ordered list of structural points with strictly
// alternating kinds and strictly increasing bar indices. An unformed
// skeleton is missing its final D point ([A,B,C] or [X,A,B,C]); a formed
// one carries it.
type Skeleton struct {
	Arity  Arity
	Points []PatternPoint
}

// Formed reports whether the final D point is present.
func (s Skeleton) Formed() bool {
	return len(s.Points) == s.Arity.points()
}

// CPoint returns the final known reversal point C: the last point of an
// unformed skeleton, the second-to-last of a formed one.
func (s Skeleton) CPoint() PatternPoint {
	if s.Formed() {
		return s.Points[len(s.Points)-2]
	}
	return s.Points[len(s.Points)-1]
}

// Direction derives the expected resolution direction from the kind of the
// final known point C: a Low resolves upward (bullish), a High downward.
func (s Skeleton) Direction() models.Direction {
	if s.CPoint().Kind == models.KindLow {
		return models.Bullish
	}
	return models.Bearish
}

// Alternates reports whether point kinds strictly alternate and bar indices
// strictly increase along the skeleton.
func (s Skeleton) Alternates() bool {
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Kind == s.Points[i-1].Kind {
			return false
		}
		if s.Points[i].BarIndex <= s.Points[i-1].BarIndex {
			return false
		}
	}
	return true
}

// PriceRange returns the lowest and highest structural point prices.
func (s Skeleton) PriceRange() (lo, hi float64) {
	lo, hi = s.Points[0].Price, s.Points[0].Price
	for _, p := range s.Points[1:] {
		if p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}
	return lo, hi
}

// PointNames returns the conventional role name of each point in order.
func (s Skeleton) PointNames() []string {
	if s.Arity == ArityXABCD {
		return []string{"X", "A", "B", "C", "D"}[:len(s.Points)]
	}
	return []string{"A", "B", "C", "D"}[:len(s.Points)]
}

// ZoneProjection is one harmonic definition's projected completion band
// for the open D point.
type ZoneProjection struct {
	Low        float64
	High       float64
	SourceName string
}

// Envelope collapses a zone list into a single band: the minimum of all
// lows and the maximum of all highs. ok is false for an empty list.
func Envelope(zones []ZoneProjection) (ZoneProjection, bool) {
	if len(zones) == 0 {
		return ZoneProjection{}, false
	}
	env := ZoneProjection{Low: zones[0].Low, High: zones[0].High, SourceName: "envelope"}
	for _, z := range zones[1:] {
		if z.Low < env.Low {
			env.Low = z.Low
		}
		if z.High > env.High {
			env.High = z.High
		}
	}
	return env, true
}

// Hypothesis is a named, directional pattern candidate that passed ratio
// classification. Identity is derived from the structural bar indices and
// the pattern name, never from the projected D, so re-detections of the
// same structure resolve to the same tracked entity.
type Hypothesis struct {
	Skeleton  Skeleton
	Direction models.Direction
	Name      string
	Ratios    map[string]float64
	Zones     []ZoneProjection
	Identity  string
}

// identityFor hashes the pattern name together with the bar indices of the
// structural points, excluding the D slot of a formed skeleton.
func identityFor(name string, skel Skeleton) string {
	n := len(skel.Points)
	if skel.Formed() {
		n--
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s", name)
	for _, p := range skel.Points[:n] {
		fmt.Fprintf(h, ":%d", p.BarIndex)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
