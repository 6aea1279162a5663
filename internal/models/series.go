package models

import (
	"math"
	"sort"

	"harmonic-scanner/internal/errors"
)

// Series is an ordered, validated bar series. Bars are kept sorted by
// strictly increasing Index; all malformed-data checks happen on append so
// the rest of the pipeline never sees NaN prices or out-of-order indices.
type Series struct {
	bars []Bar
}

// NewSeries validates and wraps a bar slice.
func NewSeries(bars []Bar) (*Series, error) {
	s := &Series{bars: make([]Bar, 0, len(bars))}
	for _, b := range bars {
		if err := s.Append(b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Append validates one bar and adds it to the series.
func (s *Series) Append(b Bar) error {
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.NewMalformedSeriesError(b.Index, "non-finite price")
		}
	}
	if b.High < b.Low {
		return errors.NewMalformedSeriesError(b.Index, "high below low")
	}
	if n := len(s.bars); n > 0 && b.Index <= s.bars[n-1].Index {
		return errors.NewMalformedSeriesError(b.Index, "non-monotonic bar index")
	}
	s.bars = append(s.bars, b)
	return nil
}

// Len returns the number of bars.
func (s *Series) Len() int {
	return len(s.bars)
}

// At returns the bar at position i (not bar index).
func (s *Series) At(i int) Bar {
	return s.bars[i]
}

// Bars returns the underlying bar slice. Callers must treat it as read-only.
func (s *Series) Bars() []Bar {
	return s.bars
}

// Last returns the most recent bar. The second return is false on an empty
// series.
func (s *Series) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Prefix returns a view over the first n bars. n beyond the series length
// returns the whole series.
func (s *Series) Prefix(n int) *Series {
	if n > len(s.bars) {
		n = len(s.bars)
	}
	return &Series{bars: s.bars[:n]}
}

// pos returns the position of the first bar whose Index >= idx.
func (s *Series) pos(idx int) int {
	return sort.Search(len(s.bars), func(i int) bool { return s.bars[i].Index >= idx })
}

// RangeExtremes returns the minimum low and maximum high over the closed
// bar-index range [fromIdx, toIdx]. ok is false when the range covers no
// bars. This is the single running min/max used by containment validation.
func (s *Series) RangeExtremes(fromIdx, toIdx int) (minLow, maxHigh float64, ok bool) {
	lo := s.pos(fromIdx)
	if lo >= len(s.bars) || s.bars[lo].Index > toIdx {
		return 0, 0, false
	}
	minLow = math.Inf(1)
	maxHigh = math.Inf(-1)
	for i := lo; i < len(s.bars) && s.bars[i].Index <= toIdx; i++ {
		if s.bars[i].Low < minLow {
			minLow = s.bars[i].Low
		}
		if s.bars[i].High > maxHigh {
			maxHigh = s.bars[i].High
		}
	}
	return minLow, maxHigh, true
}
