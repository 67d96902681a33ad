package openelevation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aritzolea/peaksight/internal/adapters/openelevation"
	"github.com/aritzolea/peaksight/internal/core/domain"
)

func elevationServer(t *testing.T, elevOf func(lat, lon float64) float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Locations []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"locations"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type result struct {
			Elevation float64 `json:"elevation"`
		}
		results := make([]result, len(req.Locations))
		for i, loc := range req.Locations {
			results[i] = result{Elevation: elevOf(loc.Latitude, loc.Longitude)}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
}

func TestClient_LookupBatch(t *testing.T) {
	srv := elevationServer(t, func(lat, lon float64) float64 { return lat * 100 })
	defer srv.Close()

	client := openelevation.NewClient(srv.URL, 1000)
	coords := []domain.GeoPoint{
		{Lat: 10, Lon: 0},
		{Lat: 20, Lon: 0},
		{Lat: 30, Lon: 0},
	}

	elevs := client.LookupBatch(context.Background(), coords)
	if len(elevs) != 3 {
		t.Fatalf("expected 3 elevations, got %d", len(elevs))
	}
	for i, want := range []float64{1000, 2000, 3000} {
		if elevs[i] != want {
			t.Errorf("coord %d: expected %v, got %v", i, want, elevs[i])
		}
	}
}

func TestClient_LookupBatch_Chunked(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		var req struct {
			Locations []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"locations"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Locations) > 2 {
			t.Errorf("chunk size 2 exceeded: %d locations", len(req.Locations))
		}

		fmt.Fprint(w, `{"results":[`)
		for i := range req.Locations {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprint(w, `{"elevation":1}`)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	client := openelevation.NewClient(srv.URL, 2)
	coords := make([]domain.GeoPoint, 5)
	elevs := client.LookupBatch(context.Background(), coords)

	if len(elevs) != 5 {
		t.Fatalf("expected 5 elevations, got %d", len(elevs))
	}
	if requests != 3 {
		t.Errorf("expected 3 chunked requests, got %d", requests)
	}
}

func TestClient_LookupBatch_FailSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := openelevation.NewClient(srv.URL, 1000)
	coords := []domain.GeoPoint{{Lat: 39, Lon: -106}, {Lat: 40, Lon: -105}}

	elevs := client.LookupBatch(context.Background(), coords)
	if len(elevs) != 2 {
		t.Fatalf("expected 2 elevations on failure, got %d", len(elevs))
	}
	for i, e := range elevs {
		if e != 0 {
			t.Errorf("coord %d: failed chunk should yield 0.0, got %v", i, e)
		}
	}
}

func TestSource_MemoisesGridPoints(t *testing.T) {
	requests := 0
	srv := elevationServer(t, func(lat, lon float64) float64 {
		requests++
		return 2500
	})
	defer srv.Close()

	source := openelevation.NewSource(openelevation.NewClient(srv.URL, 1000), 0.01)

	// Two queries snapping to the same 0.01° grid point hit the API once.
	if v := source.Lookup(39.1201, -106.4499); v != 2500 {
		t.Errorf("expected 2500, got %v", v)
	}
	if v := source.Lookup(39.1204, -106.4501); v != 2500 {
		t.Errorf("expected 2500 from memo, got %v", v)
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
	if source.Empty() {
		t.Error("live source never reports empty")
	}
}
