package openelevation

import (
	"context"
	"sync"
	"time"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/elevation"
	"github.com/aritzolea/peaksight/internal/pkg/metrics"
)

// Source implements ports.ElevationSource with live API lookups, memoised on
// the grid so an evaluation path of 200 stations does not hammer the upstream
// with duplicate queries. Failed lookups degrade to 0.0.
type Source struct {
	client     *Client
	resolution float64

	mu   sync.Mutex
	seen map[string]float64
}

// NewSource wraps a client as a terrain source at the given grid resolution.
func NewSource(client *Client, resolution float64) *Source {
	if resolution <= 0 {
		resolution = elevation.DefaultResolution
	}
	return &Source{
		client:     client,
		resolution: resolution,
		seen:       map[string]float64{},
	}
}

// Lookup returns the elevation at the grid point nearest the coordinate.
func (s *Source) Lookup(lat, lon float64) float64 {
	key := elevation.GridKey(lat, lon, s.resolution)

	s.mu.Lock()
	if v, ok := s.seen[key]; ok {
		s.mu.Unlock()
		metrics.ElevationLookups.WithLabelValues("api", "hit").Inc()
		return v
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	elevs := s.client.LookupBatch(ctx, []domain.GeoPoint{{
		Lat: elevation.Quantize(lat, s.resolution),
		Lon: elevation.Quantize(lon, s.resolution),
	}})
	v := 0.0
	if len(elevs) == 1 {
		v = elevs[0]
	}
	metrics.ElevationLookups.WithLabelValues("api", "miss").Inc()

	s.mu.Lock()
	s.seen[key] = v
	s.mu.Unlock()
	return v
}

// Empty always reports false: the upstream dataset is global, and a transport
// failure is indistinguishable from sea level only per-station.
func (s *Source) Empty() bool {
	return false
}
