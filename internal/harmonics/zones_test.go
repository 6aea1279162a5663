package harmonics

import (
	"math"
	"testing"

	"harmonic-scanner/internal/models"
)

func defByName(t *testing.T, name string) Definition {
	t.Helper()
	for _, d := range DefaultDefinitions() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no definition named %s", name)
	return Definition{}
}

func TestProjectZoneBullish(t *testing.T) {
	// A 90L, B 110H, C 95L: AB = 20.
	skel := abcSkeleton()

	z, ok := ProjectZone(defByName(t, "ABCD"), skel)
	if !ok {
		t.Fatal("projection failed")
	}
	if math.Abs(z.Low-120.44) > 1e-9 || math.Abs(z.High-120.44) > 1e-9 {
		t.Fatalf("generic zone = [%v, %v], want [120.44, 120.44]", z.Low, z.High)
	}

	z, ok = ProjectZone(defByName(t, "AB=CD"), skel)
	if !ok {
		t.Fatal("projection failed")
	}
	if z.Low != 115 || z.High != 115 {
		t.Fatalf("AB=CD zone = [%v, %v], want [115, 115]", z.Low, z.High)
	}
}

func TestProjectZoneBearish(t *testing.T) {
	// X 90L, A 110H, B 95L, C 105H: XA = 20, C is a High so the zone
	// projects below C with ordered bounds.
	skel := Skeleton{Arity: ArityXABCD, Points: []PatternPoint{
		{BarIndex: 2, Price: 90, Kind: models.KindLow},
		{BarIndex: 4, Price: 110, Kind: models.KindHigh},
		{BarIndex: 6, Price: 95, Kind: models.KindLow},
		{BarIndex: 8, Price: 105, Kind: models.KindHigh},
	}}

	z, ok := ProjectZone(defByName(t, "Butterfly"), skel)
	if !ok {
		t.Fatal("projection failed")
	}
	if math.Abs(z.Low-72.64) > 1e-9 || math.Abs(z.High-79.6) > 1e-9 {
		t.Fatalf("Butterfly zone = [%v, %v], want [72.64, 79.6]", z.Low, z.High)
	}
	if z.Low > z.High {
		t.Fatal("zone bounds out of order")
	}
}

func TestProjectZoneRejects(t *testing.T) {
	formed := Skeleton{Arity: ArityABCD, Points: []PatternPoint{
		{BarIndex: 0, Price: 90, Kind: models.KindLow},
		{BarIndex: 2, Price: 110, Kind: models.KindHigh},
		{BarIndex: 4, Price: 95, Kind: models.KindLow},
		{BarIndex: 6, Price: 115, Kind: models.KindHigh},
	}}
	if _, ok := ProjectZone(defByName(t, "AB=CD"), formed); ok {
		t.Fatal("formed skeleton must not project")
	}

	zeroLeg := Skeleton{Arity: ArityABCD, Points: []PatternPoint{
		{BarIndex: 0, Price: 100, Kind: models.KindLow},
		{BarIndex: 2, Price: 100, Kind: models.KindHigh},
		{BarIndex: 4, Price: 95, Kind: models.KindLow},
	}}
	if _, ok := ProjectZone(defByName(t, "AB=CD"), zeroLeg); ok {
		t.Fatal("zero basis leg must not project")
	}
}

func TestEnvelope(t *testing.T) {
	zones := []ZoneProjection{
		{Low: 110, High: 114, SourceName: "a"},
		{Low: 112, High: 118, SourceName: "b"},
	}
	env, ok := Envelope(zones)
	if !ok || env.Low != 110 || env.High != 118 {
		t.Fatalf("envelope = %+v, %v; want [110, 118]", env, ok)
	}
	if _, ok := Envelope(nil); ok {
		t.Fatal("empty zone list must not produce an envelope")
	}
}

func TestSkeletonZones(t *testing.T) {
	zones := SkeletonZones(abcSkeleton(), DefaultDefinitions())
	if len(zones) != 2 {
		t.Fatalf("got %d zones, want both ABCD projections", len(zones))
	}
	for _, z := range zones {
		if z.SourceName != "AB=CD" && z.SourceName != "ABCD" {
			t.Errorf("unexpected source %s", z.SourceName)
		}
	}
}
