package harmonics

import (
	"testing"

	"harmonic-scanner/internal/models"
)

func seriesFrom(t *testing.T, highs, lows []float64) *models.Series {
	t.Helper()
	bars := make([]models.Bar, len(highs))
	for i := range highs {
		bars[i] = models.Bar{
			Index: i,
			Open:  (highs[i] + lows[i]) / 2,
			High:  highs[i],
			Low:   lows[i],
			Close: (highs[i] + lows[i]) / 2,
		}
	}
	s, err := models.NewSeries(bars)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func abcSkeleton() Skeleton {
	return Skeleton{Arity: ArityABCD, Points: []PatternPoint{
		{BarIndex: 2, Price: 90, Kind: models.KindLow},
		{BarIndex: 4, Price: 110, Kind: models.KindHigh},
		{BarIndex: 6, Price: 95, Kind: models.KindLow},
	}}
}

func TestValidateContainment(t *testing.T) {
	s := seriesFrom(t,
		[]float64{100, 97, 93, 100, 110, 103, 98, 100, 105, 100},
		[]float64{96, 94, 90, 96, 106, 99, 95, 97, 101, 96})

	if !ValidateContainment(s, abcSkeleton(), 7) {
		t.Fatal("clean two-swing structure rejected")
	}

	xabc := Skeleton{Arity: ArityXABCD, Points: []PatternPoint{
		{BarIndex: 2, Price: 90, Kind: models.KindLow},
		{BarIndex: 4, Price: 110, Kind: models.KindHigh},
		{BarIndex: 6, Price: 95, Kind: models.KindLow},
		{BarIndex: 8, Price: 105, Kind: models.KindHigh},
	}}
	if !ValidateContainment(s, xabc, 9) {
		t.Fatal("clean XABC structure rejected")
	}
}

func TestContainmentRejectsOvershootAfterC(t *testing.T) {
	// Identical series except the bar right after C spikes through B's high
	// before the C pivot is even confirmed.
	s := seriesFrom(t,
		[]float64{100, 97, 93, 100, 110, 103, 98, 111, 105, 100},
		[]float64{96, 94, 90, 96, 106, 99, 95, 97, 101, 96})

	if ValidateContainment(s, abcSkeleton(), 7) {
		t.Fatal("overshoot past B between C and its confirmation bar must reject")
	}
}

func TestContainmentRejectsInteriorViolation(t *testing.T) {
	// A bar inside the AB leg exceeds B's high, so B was not the leg extreme.
	s := seriesFrom(t,
		[]float64{100, 97, 93, 112, 110, 103, 98, 100, 105, 100},
		[]float64{96, 94, 90, 96, 106, 99, 95, 97, 101, 96})

	if ValidateContainment(s, abcSkeleton(), 7) {
		t.Fatal("interior bar above B must reject")
	}
}

func TestContainmentFormedSkeleton(t *testing.T) {
	s := seriesFrom(t,
		[]float64{100, 97, 93, 100, 110, 103, 98, 100, 105, 100},
		[]float64{96, 94, 90, 96, 106, 99, 95, 97, 101, 96})

	formed := Skeleton{Arity: ArityABCD, Points: []PatternPoint{
		{BarIndex: 2, Price: 90, Kind: models.KindLow},
		{BarIndex: 4, Price: 110, Kind: models.KindHigh},
		{BarIndex: 6, Price: 95, Kind: models.KindLow},
		{BarIndex: 8, Price: 105, Kind: models.KindHigh},
	}}
	if !ValidateContainment(s, formed, 8) {
		t.Fatal("formed skeleton with clean legs rejected")
	}
}

func TestContainmentAllowsTies(t *testing.T) {
	// A bar between A and B retests B's exact high; ties are not violations.
	s := seriesFrom(t,
		[]float64{100, 97, 93, 110, 110, 103, 98, 100, 105, 100},
		[]float64{96, 94, 90, 96, 106, 99, 95, 97, 101, 96})

	if !ValidateContainment(s, abcSkeleton(), 7) {
		t.Fatal("exact retest of a structural price must not reject")
	}
}
