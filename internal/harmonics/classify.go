package harmonics

import (
	"math"
)

// legLengths computes the absolute leg lengths the skeleton's arity
// provides. Keys are "XA", "AB", "BC", "CD", "AD" as available.
func legLengths(skel Skeleton) map[string]float64 {
	pts := skel.Points
	legs := make(map[string]float64, 5)
	abs := func(a, b PatternPoint) float64 { return math.Abs(b.Price - a.Price) }
	if skel.Arity == ArityXABCD {
		legs["XA"] = abs(pts[0], pts[1])
		legs["AB"] = abs(pts[1], pts[2])
		legs["BC"] = abs(pts[2], pts[3])
		if len(pts) == 5 {
			legs["CD"] = abs(pts[3], pts[4])
			legs["AD"] = abs(pts[1], pts[4])
		}
	} else {
		legs["AB"] = abs(pts[0], pts[1])
		legs["BC"] = abs(pts[1], pts[2])
		if len(pts) == 4 {
			legs["CD"] = abs(pts[2], pts[3])
		}
	}
	return legs
}

// ratios computes the leg ratios required by the skeleton's arity. The
// second return is false when any denominator leg has zero length, which
// disqualifies the candidate for all definitions.
func ratios(skel Skeleton) (map[string]float64, bool) {
	legs := legLengths(skel)
	out := make(map[string]float64, 4)
	div := func(name, num, den string) bool {
		d, ok := legs[den]
		if !ok {
			return true
		}
		n, ok := legs[num]
		if !ok {
			return true
		}
		if d == 0 {
			return false
		}
		out[name] = n / d
		return true
	}
	if skel.Arity == ArityXABCD {
		if !div(RatioABXA, "AB", "XA") || !div(RatioBCAB, "BC", "AB") ||
			!div(RatioCDBC, "CD", "BC") || !div(RatioADXA, "AD", "XA") {
			return nil, false
		}
	} else {
		if !div(RatioBCAB, "BC", "AB") || !div(RatioCDBC, "CD", "BC") {
			return nil, false
		}
	}
	return out, true
}

// Classify matches one candidate skeleton against the definition table and
// returns one Hypothesis per matching definition. A candidate may match
// zero, one or several definitions; each match shares the skeleton but has
// its own name and identity. Bands for ratios that need the unresolved D
// point are deferred to zone projection. Zero-length legs yield no matches,
// silently.
func Classify(skel Skeleton, defs []Definition) []Hypothesis {
	if !skel.Alternates() {
		return nil
	}
	r, ok := ratios(skel)
	if !ok {
		return nil
	}
	var out []Hypothesis
	for _, def := range defs {
		if def.Arity != skel.Arity {
			continue
		}
		if !bandsMatch(def, r) {
			continue
		}
		out = append(out, Hypothesis{
			Skeleton:  skel,
			Direction: skel.Direction(),
			Name:      def.Name,
			Ratios:    r,
			Identity:  identityFor(def.Name, skel),
		})
	}
	return out
}

// bandsMatch checks every band the definition constrains against the
// computed ratios. Ratios not computable on an unformed skeleton are
// skipped here and enforced by the completion band instead.
func bandsMatch(def Definition, r map[string]float64) bool {
	for name, band := range def.Bands {
		v, ok := r[name]
		if !ok {
			continue
		}
		if !band.Contains(v) {
			return false
		}
	}
	return true
}
