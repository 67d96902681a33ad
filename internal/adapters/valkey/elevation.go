package valkey

import (
	"context"
	"strconv"
	"time"

	"github.com/aritzolea/peaksight/internal/core/elevation"
	"github.com/aritzolea/peaksight/internal/pkg/metrics"
)

const elevKeyPrefix = "elev:"

// ElevationSource implements ports.ElevationSource on top of a shared Valkey
// instance populated by the prefetcher. Keys follow the canonical grid-key
// format under the "elev:" prefix. Lookups never fail: any miss or transport
// error degrades to 0.0, matching the grid cache's fallback behaviour.
type ElevationSource struct {
	cache      *Cache
	resolution float64
	empty      bool
}

// NewElevationSource wraps a Valkey cache as a terrain source. Emptiness is
// sampled once at construction; a prefetch run that fills the store requires
// a new source to be observed.
func NewElevationSource(cache *Cache, resolution float64) *ElevationSource {
	if resolution <= 0 {
		resolution = elevation.DefaultResolution
	}
	s := &ElevationSource{cache: cache, resolution: resolution}
	s.empty = !s.probe()
	return s
}

// Lookup fetches the elevation for the grid point nearest the coordinate,
// falling back to the exact key and then to 0.0.
func (s *ElevationSource) Lookup(lat, lon float64) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if v, ok := s.get(ctx, elevation.GridKey(lat, lon, s.resolution)); ok {
		metrics.ElevationLookups.WithLabelValues("valkey", "hit").Inc()
		return v
	}
	if v, ok := s.get(ctx, elevation.Key(lat, lon)); ok {
		metrics.ElevationLookups.WithLabelValues("valkey", "hit").Inc()
		return v
	}
	metrics.ElevationLookups.WithLabelValues("valkey", "miss").Inc()
	return 0.0
}

// Empty reports whether the store held no elevation keys at construction.
func (s *ElevationSource) Empty() bool {
	return s.empty
}

// Store writes a batch of grid-keyed elevations without expiry; terrain does
// not go stale.
func (s *ElevationSource) Store(ctx context.Context, data map[string]float64) error {
	for key, elev := range data {
		cmd := s.cache.client.Do(ctx,
			s.cache.client.B().Set().Key(elevKeyPrefix+key).Value(strconv.FormatFloat(elev, 'f', -1, 64)).Build(),
		)
		if err := cmd.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ElevationSource) get(ctx context.Context, key string) (float64, bool) {
	cmd := s.cache.client.Do(ctx, s.cache.client.B().Get().Key(elevKeyPrefix+key).Build())
	if cmd.Error() != nil {
		return 0, false
	}
	v, err := cmd.AsFloat64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// probe reports whether at least one elevation key exists.
func (s *ElevationSource) probe() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := s.cache.client.Do(ctx,
		s.cache.client.B().Scan().Cursor(0).Match(elevKeyPrefix+"*").Count(1).Build(),
	)
	entry, err := cmd.AsScanEntry()
	if err != nil {
		return false
	}
	return len(entry.Elements) > 0
}
