package harmonics

import (
	"harmonic-scanner/internal/models"
)

// ProjectZone computes one definition's completion band for an unformed
// skeleton: D = C +/- ratio x |basis leg|, added for bullish structures and
// subtracted for bearish ones, with the band edges giving the zone bounds.
// ok is false when the skeleton is already formed or the basis leg has zero
// length; a zero-length reference leg disqualifies only this definition's
// projection, not the whole hypothesis.
func ProjectZone(def Definition, skel Skeleton) (ZoneProjection, bool) {
	if skel.Formed() {
		return ZoneProjection{}, false
	}
	leg, ok := legLengths(skel)[def.Completion.Basis]
	if !ok || leg == 0 {
		return ZoneProjection{}, false
	}
	c := skel.CPoint().Price
	a := c + def.Completion.Band.Min*leg
	b := c + def.Completion.Band.Max*leg
	if skel.Direction() == models.Bearish {
		a = c - def.Completion.Band.Min*leg
		b = c - def.Completion.Band.Max*leg
	}
	if a > b {
		a, b = b, a
	}
	return ZoneProjection{Low: a, High: b, SourceName: def.Name}, true
}

// ProjectZones fills the hypothesis zone list from its matching definition.
// Hypotheses for formed skeletons keep an empty list.
func ProjectZones(h *Hypothesis, defs []Definition) {
	for _, def := range defs {
		if def.Name != h.Name {
			continue
		}
		if z, ok := ProjectZone(def, h.Skeleton); ok {
			h.Zones = append(h.Zones, z)
		}
		return
	}
}

// SkeletonZones returns every definition's projection for one shared
// unformed skeleton, for callers that want the full per-definition band
// list rather than per-hypothesis zones.
func SkeletonZones(skel Skeleton, defs []Definition) []ZoneProjection {
	var out []ZoneProjection
	for _, def := range defs {
		if def.Arity != skel.Arity {
			continue
		}
		if z, ok := ProjectZone(def, skel); ok {
			out = append(out, z)
		}
	}
	return out
}
