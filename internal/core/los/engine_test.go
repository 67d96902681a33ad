package los_test

import (
	"errors"
	"math"
	"testing"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/elevation"
	"github.com/aritzolea/peaksight/internal/core/los"
	"github.com/aritzolea/peaksight/internal/pkg/geospatial"
)

// flatSource returns the same elevation everywhere and reports non-empty.
type flatSource struct {
	elev float64
}

func (f flatSource) Lookup(lat, lon float64) float64 { return f.elev }
func (f flatSource) Empty() bool                     { return false }

func peak(name string, lat, lon, elevM float64) domain.Peak {
	return domain.Peak{
		Name:       name,
		Location:   domain.GeoPoint{Lat: lat, Lon: lon},
		ElevationM: elevM,
	}
}

// Two tall peaks 50 km apart over flat 2000 m terrain: the interpolated
// baseline stays far above the terrain even after the curvature correction.
func TestEvaluate_ClearOverFlatTerrain(t *testing.T) {
	// ~50 km apart along the equator (1° ≈ 111.19 km).
	a := peak("West Summit", 0, 0, 4300)
	b := peak("East Summit", 0, 50.0/111.19, 4400)

	result, err := los.Evaluate(a, b, flatSource{elev: 2000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Clear {
		t.Error("expected clear verdict over flat low terrain")
	}
	if math.Abs(result.DistanceKm-50.0) > 0.5 {
		t.Errorf("expected ~50 km, got %.3f", result.DistanceKm)
	}
	if result.CacheEmpty {
		t.Error("flat source is not empty")
	}
}

func TestEvaluate_BlockedByRidge(t *testing.T) {
	a := peak("A", 0, 0, 3000)
	b := peak("B", 0, 50.0/111.19, 3000)

	// Terrain higher than both endpoints blocks everywhere except the
	// overridden end stations.
	result, err := los.Evaluate(a, b, flatSource{elev: 3500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Clear {
		t.Error("expected blocked verdict under a 3500 m ridge")
	}
	if result.Verdict() != "blocked" {
		t.Errorf("expected verdict blocked, got %s", result.Verdict())
	}
}

func TestEvaluate_DegenerateGeometry(t *testing.T) {
	p := peak("Solo", 39.1178, -106.4454, 4401)

	_, err := los.Evaluate(p, p, flatSource{})
	if !errors.Is(err, domain.ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestEvaluate_SampleShape(t *testing.T) {
	a := peak("A", 38.8409, -105.0423, 4302)
	b := peak("B", 39.1178, -106.4454, 4401)

	result, err := los.Evaluate(a, b, flatSource{elev: 2500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.DistancesKm) != los.NumSamples ||
		len(result.TerrainM) != los.NumSamples ||
		len(result.SightLineM) != los.NumSamples {
		t.Fatalf("expected %d samples in every profile", los.NumSamples)
	}

	// Endpoint terrain is overridden with the peaks' own elevations.
	if result.TerrainM[0] != a.ElevationM {
		t.Errorf("station 0 terrain should be %v, got %v", a.ElevationM, result.TerrainM[0])
	}
	if result.TerrainM[los.NumSamples-1] != b.ElevationM {
		t.Errorf("last station terrain should be %v, got %v", b.ElevationM, result.TerrainM[los.NumSamples-1])
	}

	if result.DistancesKm[0] != 0 {
		t.Errorf("first station distance should be 0, got %v", result.DistancesKm[0])
	}
	if math.Abs(result.DistancesKm[los.NumSamples-1]-result.DistanceKm) > 1e-9 {
		t.Errorf("last station distance should equal total %v, got %v",
			result.DistanceKm, result.DistancesKm[los.NumSamples-1])
	}

	// The sight line dips below the straight chord mid-path and meets the
	// endpoints exactly (drop is zero at d=0 and d=D).
	if result.SightLineM[0] != a.ElevationM {
		t.Errorf("sight line should start at %v, got %v", a.ElevationM, result.SightLineM[0])
	}
	mid := los.NumSamples / 2
	straightMid := a.ElevationM + (b.ElevationM-a.ElevationM)*
		(result.DistancesKm[mid]/result.DistanceKm)
	if result.SightLineM[mid] >= straightMid {
		t.Error("sight line at mid-path should sit below the straight chord")
	}
}

func TestEvaluate_MidpointCurvatureDrop(t *testing.T) {
	a := peak("A", 0, 0, 3000)
	b := peak("B", 0, 100.0/111.19, 3000)

	result, err := los.Evaluate(a, b, flatSource{elev: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := result.DistanceKm
	rEffectiveM := los.RefractionFactor * geospatial.EarthRadiusKm * 1000
	want := (d / 2 * 1000) * (d / 2 * 1000) / (2 * rEffectiveM)
	if result.CurvatureDropM != want {
		t.Errorf("midpoint drop: expected %v, got %v", want, result.CurvatureDropM)
	}
	// ~147 m for 100 km with k=4/3.
	if result.CurvatureDropM < 140 || result.CurvatureDropM > 155 {
		t.Errorf("100 km midpoint drop should be ~147 m, got %.2f", result.CurvatureDropM)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	a := peak("A", 38.8409, -105.0423, 4302)
	b := peak("B", 39.1178, -106.4454, 4401)
	cache := elevation.NewGridCache(map[string]float64{
		"39.000000,-105.700000": 3100,
		"38.950000,-105.400000": 2900,
	}, 0.01)

	first, err := los.Evaluate(a, b, cache)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := los.Evaluate(a, b, cache)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.DistanceKm != second.DistanceKm ||
		first.HorizonLimitKm != second.HorizonLimitKm ||
		first.CurvatureDropM != second.CurvatureDropM ||
		first.Clear != second.Clear {
		t.Error("repeated evaluation changed scalar outputs")
	}
	for i := range first.TerrainM {
		if first.TerrainM[i] != second.TerrainM[i] ||
			first.SightLineM[i] != second.SightLineM[i] {
			t.Fatalf("repeated evaluation changed profile at station %d", i)
		}
	}
}

func TestEvaluate_Symmetry(t *testing.T) {
	a := peak("A", 0, 0, 4300)
	b := peak("B", 0, 50.0/111.19, 4400)
	src := flatSource{elev: 2000}

	ab, err := los.Evaluate(a, b, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := los.Evaluate(b, a, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ab.DistanceKm != ba.DistanceKm {
		t.Errorf("distance not symmetric: %v vs %v", ab.DistanceKm, ba.DistanceKm)
	}
	if ab.Clear != ba.Clear {
		t.Error("verdict not symmetric over direction-independent terrain")
	}
	// The reversed run walks the same stations in opposite order.
	n := los.NumSamples
	for i := 0; i < n; i++ {
		if math.Abs(ab.TerrainM[i]-ba.TerrainM[n-1-i]) > 1e-9 {
			t.Fatalf("terrain profile not reversed at station %d", i)
		}
	}
}

// Raising an endpoint can only lift the interpolated baseline; a clear pair
// must stay clear.
func TestEvaluate_MonotoneInEndpointElevation(t *testing.T) {
	a := peak("A", 0, 0, 3200)
	b := peak("B", 0, 80.0/111.19, 3300)
	src := flatSource{elev: 2800}

	base, err := los.Evaluate(a, b, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !base.Clear {
		t.Fatal("baseline case should be clear")
	}

	for _, extra := range []float64{100, 500, 2000} {
		raised := b
		raised.ElevationM += extra
		result, err := los.Evaluate(a, raised, src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Clear {
			t.Errorf("raising endpoint by %v m turned clear into blocked", extra)
		}
	}
}

func TestEvaluate_NegativeElevationClampsHorizon(t *testing.T) {
	// Below-sea-level endpoints are legal; the horizon term clamps to zero
	// instead of producing NaN.
	a := peak("Badwater", 36.2302, -116.7677, -86)
	b := peak("Telescope", 36.1698, -117.0892, 3368)

	result, err := los.Evaluate(a, b, flatSource{elev: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.IsNaN(result.HorizonLimitKm) {
		t.Fatal("horizon limit must not be NaN for negative elevation")
	}
	want := 3.57 * math.Sqrt(3368)
	if math.Abs(result.HorizonLimitKm-want) > 1e-9 {
		t.Errorf("expected horizon %.4f (clamped), got %.4f", want, result.HorizonLimitKm)
	}
}

func TestEvaluate_EmptyCacheFlag(t *testing.T) {
	a := peak("A", 0, 0, 1000)
	b := peak("B", 0, 0.5, 1000)

	result, err := los.Evaluate(a, b, elevation.NewGridCache(nil, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.CacheEmpty {
		t.Error("empty source should set the cache-empty flag")
	}
	// Interior stations fall back to 0.0 terrain; the verdict still computes.
	if !result.Clear {
		t.Error("zero terrain under elevated endpoints should be clear")
	}
	for i := 1; i < los.NumSamples-1; i++ {
		if result.TerrainM[i] != 0 {
			t.Fatalf("expected zero terrain at station %d, got %v", i, result.TerrainM[i])
		}
	}
}

// Ties between terrain and sight line count as clear: zero-elevation endpoints
// over zero terrain put every station exactly on the (sub-chord) line only at
// the ends, but equal-elevation flat terrain matching the chord at the ends
// must not flip the verdict.
func TestEvaluate_TieIsClear(t *testing.T) {
	a := peak("A", 0, 0, 2000)
	b := peak("B", 0, 10.0/111.19, 2000)

	// Terrain exactly at the sight line's endpoint height; the curvature dip
	// keeps interior stations below terrain... so use terrain that tracks the
	// sight line exactly: trivially, terrain equal to the lower envelope at
	// the endpoints (stations 0 and N-1 are ties by construction).
	result, err := los.Evaluate(a, b, flatSource{elev: -10000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Stations 0 and N-1: terrain == sight line exactly (drop is zero there).
	if result.TerrainM[0] != result.SightLineM[0] {
		t.Fatal("expected an exact tie at station 0")
	}
	if !result.Clear {
		t.Error("exact ties must count as clear")
	}
}
