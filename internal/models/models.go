// Package models provides the domain models for harmonic pattern scanning.
package models

import (
	"time"
)

// PointKind distinguishes high and low extremum points.
type PointKind string

const (
	KindHigh PointKind = "high"
	KindLow  PointKind = "low"
)

// Opposite returns the other point kind.
func (k PointKind) Opposite() PointKind {
	if k == KindHigh {
		return KindLow
	}
	return KindHigh
}

// Direction represents the expected resolution direction of a pattern.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Bar represents one OHLC record. Index is the sole structural identity
// used by all downstream components; Timestamp is a display attribute and
// is never used for structural comparisons.
type Bar struct {
	Index     int
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// ExtremumPoint is a local price pivot. A bar may contribute both a High
// and a Low point; the two are never merged.
type ExtremumPoint struct {
	BarIndex int
	Price    float64
	Kind     PointKind
}
