package geospatial_test

import (
	"math"
	"testing"

	"github.com/aritzolea/peaksight/internal/pkg/geospatial"
)

func TestHaversineKm_EquatorDegree(t *testing.T) {
	// One degree of longitude on the equator spans R * pi/180 km exactly.
	want := geospatial.EarthRadiusKm * math.Pi / 180
	got := geospatial.HaversineKm(0, 0, 0, 1)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.9f km, got %.9f km", want, got)
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	ab := geospatial.HaversineKm(38.8409, -105.0423, 39.1178, -106.4454)
	ba := geospatial.HaversineKm(39.1178, -106.4454, 38.8409, -105.0423)
	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
	if ab < 120 || ab > 130 {
		t.Errorf("Pikes Peak to Mount Elbert should be ~125 km, got %.2f", ab)
	}
}

func TestHaversineKm_SamePoint(t *testing.T) {
	if d := geospatial.HaversineKm(43.263, -2.935, 43.263, -2.935); d != 0 {
		t.Errorf("distance to self must be 0, got %v", d)
	}
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(39.0, -106.0, 5000)
	if 39.0 < minLat || 39.0 > maxLat || -106.0 < minLon || -106.0 > maxLon {
		t.Error("bounding box does not contain its center")
	}
	if maxLat-minLat <= 0 || maxLon-minLon <= 0 {
		t.Error("bounding box has no extent")
	}
}

func TestMinKmPerDegreeLat_IsConservative(t *testing.T) {
	// The meridional bound must never exceed the true distance, anywhere.
	for _, lat := range []float64{-80, -45, 0, 30, 60, 85} {
		d := geospatial.HaversineKm(lat, 20, lat+1, 20)
		if d < geospatial.MinKmPerDegreeLat {
			t.Errorf("at lat %.0f one degree spans %.3f km, below the bound %.3f",
				lat, d, geospatial.MinKmPerDegreeLat)
		}
	}
}
