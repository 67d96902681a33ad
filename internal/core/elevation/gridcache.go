package elevation

import (
	"fmt"
	"math"
)

// DefaultResolution is the grid spacing (degrees) the prefetcher writes caches
// at; roughly 1 km at mid latitudes.
const DefaultResolution = 0.01

// Quantize snaps a coordinate to the nearest multiple of the grid resolution.
func Quantize(v, resolution float64) float64 {
	return math.Round(v/resolution) * resolution
}

// Key renders the canonical cache key for a coordinate pair. Both the cache
// producer and every lookup path must format keys through this function, or
// lookups degrade to the fallback chain on every query.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

// GridKey quantizes both coordinates and renders the canonical key.
func GridKey(lat, lon, resolution float64) string {
	return Key(Quantize(lat, resolution), Quantize(lon, resolution))
}

// GridCache resolves elevations from a precomputed regular-grid mapping.
// Lookups snap to the nearest grid point first, fall back to an exact-key
// match (for hand-built or pre-snapped caches), and finally to 0.0, so a
// verdict is always computable even over sparse data.
type GridCache struct {
	data       map[string]float64
	resolution float64
}

// NewGridCache wraps an elevation mapping. A non-positive resolution falls
// back to DefaultResolution. The map is shared, not copied: treat it as
// read-only for the lifetime of the cache.
func NewGridCache(data map[string]float64, resolution float64) *GridCache {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if data == nil {
		data = map[string]float64{}
	}
	return &GridCache{data: data, resolution: resolution}
}

// Lookup returns the cached elevation for the grid point nearest the query
// coordinate, the exact-key value if the snapped key is absent, or 0.0.
func (c *GridCache) Lookup(lat, lon float64) float64 {
	if elev, ok := c.data[GridKey(lat, lon, c.resolution)]; ok {
		return elev
	}
	if elev, ok := c.data[Key(lat, lon)]; ok {
		return elev
	}
	return 0.0
}

// Empty reports whether the cache holds no grid points.
func (c *GridCache) Empty() bool {
	return len(c.data) == 0
}

// Len returns the number of cached grid points.
func (c *GridCache) Len() int {
	return len(c.data)
}

// Resolution returns the grid spacing in degrees.
func (c *GridCache) Resolution() float64 {
	return c.resolution
}
