package harmonics

import (
	"harmonic-scanner/internal/models"
)

// EnumerateOptions bounds the candidate search.
type EnumerateOptions struct {
	// MaxWindow is the maximum number of extremum positions separating the
	// first and last point of a candidate. Zero disables the bound (full
	// search), which callers should use only on small series.
	MaxWindow int
	// MaxCandidates truncates enumeration after this many skeletons,
	// preferring the most recently completed candidates. Zero means no cap.
	MaxCandidates int
}

// Enumerate generates every temporally ordered, kind-alternating tuple of
// size points (3 or 4 for unformed ABCD/XABCD, 4 or 5 for formed) from an
// alternating extremum sequence. Candidates are returned most recent last
// point first, so a MaxCandidates cap keeps the freshest structures. The
// output is unvalidated: no ratio or containment checks happen here.
//
// Fewer than size extremum points yields an empty result, not an error.
func Enumerate(points []models.ExtremumPoint, size int, opts EnumerateOptions) []Skeleton {
	var out []Skeleton
	for last := len(points) - 1; last >= size-1; last-- {
		out = appendEndingAt(out, points, last, size, opts)
		if opts.MaxCandidates > 0 && len(out) >= opts.MaxCandidates {
			return out[:opts.MaxCandidates]
		}
	}
	return out
}

// appendEndingAt collects tuples whose final point sits at alt position
// last. Because the input alternates, kinds alternate along a tuple exactly
// when consecutive chosen positions are an odd distance apart; the search
// walks nearer predecessors first so truncation keeps tight structures.
func appendEndingAt(out []Skeleton, points []models.ExtremumPoint, last, size int, opts EnumerateOptions) []Skeleton {
	first := 0
	if opts.MaxWindow > 0 && last-opts.MaxWindow > 0 {
		first = last - opts.MaxWindow
	}
	idx := make([]int, size)
	idx[size-1] = last

	var rec func(slot int) bool
	rec = func(slot int) bool {
		if slot < 0 {
			out = append(out, skeletonFrom(points, idx))
			return opts.MaxCandidates == 0 || len(out) < opts.MaxCandidates
		}
		for p := idx[slot+1] - 1; p >= first+slot; p -= 2 {
			idx[slot] = p
			if !rec(slot - 1) {
				return false
			}
		}
		return true
	}
	rec(size - 2)
	return out
}

func skeletonFrom(points []models.ExtremumPoint, idx []int) Skeleton {
	arity := ArityABCD
	if len(idx) >= 4 {
		// Size 4 is ambiguous between a formed ABCD and an unformed XABCD;
		// enumeration emits unformed structures, so 4 points means XABCD.
		arity = ArityXABCD
	}
	pts := make([]PatternPoint, len(idx))
	for i, p := range idx {
		pts[i] = PatternPoint{
			BarIndex: points[p].BarIndex,
			Price:    points[p].Price,
			Kind:     points[p].Kind,
		}
	}
	return Skeleton{Arity: arity, Points: pts}
}

// EnumerateEndingAt is the incremental variant used by the pipeline: it
// generates only the tuples whose final point is the most recent confirmed
// pivot, so each new bar does bounded work.
func EnumerateEndingAt(points []models.ExtremumPoint, size int, opts EnumerateOptions) []Skeleton {
	if len(points) < size {
		return nil
	}
	return appendEndingAt(nil, points, len(points)-1, size, opts)
}
