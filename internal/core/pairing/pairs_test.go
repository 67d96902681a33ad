package pairing_test

import (
	"errors"
	"math"
	"testing"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/pairing"
	"github.com/aritzolea/peaksight/internal/pkg/geospatial"
)

// kmPerDegreeAtEquator converts km to equatorial longitude degrees so test
// fixtures can be placed at exact great-circle distances.
var kmPerDegreeAtEquator = geospatial.EarthRadiusKm * math.Pi / 180

func equatorPeak(name string, distKm, elevM float64) domain.Peak {
	return domain.Peak{
		Name:       name,
		Location:   domain.GeoPoint{Lat: 0, Lon: distKm / kmPerDegreeAtEquator},
		ElevationM: elevM,
	}
}

func TestFindPairs_CollinearBand(t *testing.T) {
	// Three peaks along the equator at 0, 100 and 450 km: separations are
	// 100, 350 and 450 km.
	peaks := []domain.Peak{
		equatorPeak("P0", 0, 4000),
		equatorPeak("P1", 100, 4100),
		equatorPeak("P2", 450, 4200),
	}

	pairs, err := pairing.FindPairs(peaks, 300, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs in [300, 500], got %d", len(pairs))
	}

	// Lexicographic (i, j) order: (0,2) before (1,2).
	if pairs[0].IndexA != 0 || pairs[0].IndexB != 2 {
		t.Errorf("first pair should be (0,2), got (%d,%d)", pairs[0].IndexA, pairs[0].IndexB)
	}
	if pairs[1].IndexA != 1 || pairs[1].IndexB != 2 {
		t.Errorf("second pair should be (1,2), got (%d,%d)", pairs[1].IndexA, pairs[1].IndexB)
	}

	if math.Abs(pairs[0].DistanceKm-450) > 1e-6 {
		t.Errorf("pair (0,2) distance: expected 450, got %v", pairs[0].DistanceKm)
	}
	if math.Abs(pairs[1].DistanceKm-350) > 1e-6 {
		t.Errorf("pair (1,2) distance: expected 350, got %v", pairs[1].DistanceKm)
	}
}

func TestFindPairs_InclusiveEnds(t *testing.T) {
	peaks := []domain.Peak{
		equatorPeak("A", 0, 1000),
		equatorPeak("B", 200, 1000),
	}

	d := geospatial.HaversineKm(
		peaks[0].Location.Lat, peaks[0].Location.Lon,
		peaks[1].Location.Lat, peaks[1].Location.Lon,
	)

	// Band edges pinned to the measured distance itself.
	atMin, err := pairing.FindPairs(peaks, d, d+100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atMin) != 1 {
		t.Error("pair exactly at minKm should be included")
	}

	atMax, err := pairing.FindPairs(peaks, 0, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atMax) != 1 {
		t.Error("pair exactly at maxKm should be included")
	}
}

func TestFindPairs_InvalidBand(t *testing.T) {
	peaks := []domain.Peak{
		equatorPeak("A", 0, 1000),
		equatorPeak("B", 100, 1000),
	}

	cases := []struct {
		name     string
		min, max float64
	}{
		{"min greater than max", 500, 300},
		{"negative min", -1, 100},
		{"negative max", 0, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pairing.FindPairs(peaks, tc.min, tc.max)
			if !errors.Is(err, domain.ErrInvalidDistanceBand) {
				t.Fatalf("expected ErrInvalidDistanceBand, got %v", err)
			}
		})
	}
}

func TestFindPairs_NoSelfOrDuplicatePairs(t *testing.T) {
	peaks := []domain.Peak{
		equatorPeak("A", 0, 1000),
		equatorPeak("B", 50, 1000),
		equatorPeak("C", 120, 1000),
	}

	pairs, err := pairing.FindPairs(peaks, 0, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pairs) != 3 {
		t.Fatalf("expected all 3 combinations, got %d", len(pairs))
	}
	seen := map[[2]int]bool{}
	for _, p := range pairs {
		if p.IndexA >= p.IndexB {
			t.Errorf("expected IndexA < IndexB, got (%d,%d)", p.IndexA, p.IndexB)
		}
		key := [2]int{p.IndexA, p.IndexB}
		if seen[key] {
			t.Errorf("duplicate pair (%d,%d)", p.IndexA, p.IndexB)
		}
		seen[key] = true
	}
}

func TestFindPairs_EmptyAndSingleton(t *testing.T) {
	if pairs, err := pairing.FindPairs(nil, 0, 100); err != nil || len(pairs) != 0 {
		t.Errorf("nil input: expected empty result, got %v pairs, err %v", len(pairs), err)
	}

	one := []domain.Peak{equatorPeak("Solo", 0, 3000)}
	if pairs, err := pairing.FindPairs(one, 0, 100); err != nil || len(pairs) != 0 {
		t.Errorf("single peak: expected empty result, got %v pairs, err %v", len(pairs), err)
	}
}

// The meridional shortcut must never change the output set: compare against a
// plain haversine scan over peaks spread across latitudes.
func TestFindPairs_MatchesNaiveScan(t *testing.T) {
	peaks := []domain.Peak{
		{Name: "N0", Location: domain.GeoPoint{Lat: 36.5786, Lon: -118.2920}, ElevationM: 4421},
		{Name: "N1", Location: domain.GeoPoint{Lat: 39.1178, Lon: -106.4454}, ElevationM: 4401},
		{Name: "N2", Location: domain.GeoPoint{Lat: 46.8523, Lon: -121.7603}, ElevationM: 4392},
		{Name: "N3", Location: domain.GeoPoint{Lat: 63.0692, Lon: -151.0070}, ElevationM: 6190},
		{Name: "N4", Location: domain.GeoPoint{Lat: 38.8409, Lon: -105.0423}, ElevationM: 4302},
		{Name: "N5", Location: domain.GeoPoint{Lat: 40.2549, Lon: -105.6151}, ElevationM: 4346},
	}

	const minKm, maxKm = 50, 1200

	want := map[[2]int]float64{}
	for i := 0; i < len(peaks); i++ {
		for j := i + 1; j < len(peaks); j++ {
			d := geospatial.HaversineKm(
				peaks[i].Location.Lat, peaks[i].Location.Lon,
				peaks[j].Location.Lat, peaks[j].Location.Lon,
			)
			if d >= minKm && d <= maxKm {
				want[[2]int{i, j}] = d
			}
		}
	}

	got, err := pairing.FindPairs(peaks, minKm, maxKm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(got))
	}
	for _, p := range got {
		d, ok := want[[2]int{p.IndexA, p.IndexB}]
		if !ok {
			t.Errorf("unexpected pair (%d,%d)", p.IndexA, p.IndexB)
			continue
		}
		if p.DistanceKm != d {
			t.Errorf("pair (%d,%d) distance mismatch: %v vs %v", p.IndexA, p.IndexB, p.DistanceKm, d)
		}
	}
}
