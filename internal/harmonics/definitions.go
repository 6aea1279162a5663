package harmonics

import (
	"harmonic-scanner/internal/errors"
)

// Leg ratio names shared by the classifier, the definition table and
// configuration overrides.
const (
	RatioABXA = "ab_xa"
	RatioBCAB = "bc_ab"
	RatioCDBC = "cd_bc"
	RatioADXA = "ad_xa"
)

// RatioBand is an inclusive tolerance band for one leg ratio.
type RatioBand struct {
	Min float64
	Max float64
}

// Contains reports whether r falls inside the band, edges inclusive.
func (b RatioBand) Contains(r float64) bool {
	return r >= b.Min && r <= b.Max
}

// CompletionRule describes how a definition projects the open D point:
// D = C +/- ratio x |basis leg|, direction per Bullish/Bearish. The band's
// two edges give the projected zone's bounds.
type CompletionRule struct {
	Basis string // "XA", "BC" or "AB"
	Band  RatioBand
}

// Definition is one named harmonic pattern: per-leg inclusive ratio bands
// plus a completion rule. A missing band leaves that leg unconstrained.
type Definition struct {
	Name       string
	Arity      Arity
	Bands      map[string]RatioBand
	Completion CompletionRule
}

// DefaultDefinitions returns the built-in pattern table. The set is closed;
// configuration may override individual bands but not add names.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:  "Gartley",
			Arity: ArityXABCD,
			Bands: map[string]RatioBand{
				RatioABXA: {0.586, 0.708},
				RatioBCAB: {0.382, 0.886},
				RatioCDBC: {1.130, 1.618},
				RatioADXA: {0.736, 0.836},
			},
			Completion: CompletionRule{Basis: "XA", Band: RatioBand{0.736, 0.836}},
		},
		{
			Name:  "Bat",
			Arity: ArityXABCD,
			Bands: map[string]RatioBand{
				RatioABXA: {0.382, 0.500},
				RatioBCAB: {0.382, 0.886},
				RatioCDBC: {1.618, 2.618},
				RatioADXA: {0.836, 0.936},
			},
			Completion: CompletionRule{Basis: "XA", Band: RatioBand{0.836, 0.936}},
		},
		{
			Name:  "Butterfly",
			Arity: ArityXABCD,
			Bands: map[string]RatioBand{
				RatioABXA: {0.736, 0.836},
				RatioBCAB: {0.382, 0.886},
				RatioCDBC: {1.618, 2.240},
				RatioADXA: {1.270, 1.618},
			},
			Completion: CompletionRule{Basis: "XA", Band: RatioBand{1.270, 1.618}},
		},
		{
			Name:  "Crab",
			Arity: ArityXABCD,
			Bands: map[string]RatioBand{
				RatioABXA: {0.382, 0.618},
				RatioBCAB: {0.382, 0.886},
				RatioCDBC: {2.618, 3.618},
				RatioADXA: {1.568, 1.668},
			},
			Completion: CompletionRule{Basis: "XA", Band: RatioBand{1.568, 1.668}},
		},
		{
			Name:  "Shark",
			Arity: ArityXABCD,
			Bands: map[string]RatioBand{
				RatioABXA: {1.130, 1.618},
				RatioBCAB: {1.130, 2.240},
				RatioADXA: {0.886, 1.130},
			},
			Completion: CompletionRule{Basis: "XA", Band: RatioBand{0.886, 1.130}},
		},
		{
			Name:  "Cypher",
			Arity: ArityXABCD,
			Bands: map[string]RatioBand{
				RatioABXA: {0.382, 0.618},
				RatioBCAB: {1.272, 1.414},
				RatioADXA: {0.736, 0.836},
			},
			Completion: CompletionRule{Basis: "XA", Band: RatioBand{0.736, 0.836}},
		},
		{
			Name:  "AB=CD",
			Arity: ArityABCD,
			Bands: map[string]RatioBand{
				RatioBCAB: {0.382, 0.886},
				RatioCDBC: {1.130, 2.618},
			},
			Completion: CompletionRule{Basis: "AB", Band: RatioBand{1.000, 1.000}},
		},
		{
			// Raw ABCD projection: any alternating A-B-C skeleton qualifies,
			// so a candidate matching no named band still yields a generic
			// 1.272 extension target.
			Name:       "ABCD",
			Arity:      ArityABCD,
			Bands:      map[string]RatioBand{},
			Completion: CompletionRule{Basis: "AB", Band: RatioBand{1.272, 1.272}},
		},
	}
}

// ApplyOverride replaces the tolerance band of one (pattern, leg) pair.
// "completion" as the leg name overrides the completion band instead.
func ApplyOverride(defs []Definition, pattern, leg string, band RatioBand) error {
	if band.Min > band.Max {
		return errors.NewConfigError("tolerances", pattern+"/"+leg, "band min above max")
	}
	for i := range defs {
		if defs[i].Name != pattern {
			continue
		}
		if leg == "completion" {
			defs[i].Completion.Band = band
			return nil
		}
		switch leg {
		case RatioABXA, RatioBCAB, RatioCDBC, RatioADXA:
			defs[i].Bands[leg] = band
			return nil
		}
		return errors.NewConfigError("tolerances", leg, "unknown leg ratio")
	}
	return errors.NewConfigError("tolerances", pattern, "unknown pattern name")
}
