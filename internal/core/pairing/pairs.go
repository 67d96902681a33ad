package pairing

import (
	"fmt"
	"math"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/pkg/geospatial"
)

// FindPairs scans every unordered pair of peaks and returns those whose
// great-circle separation lies inside the inclusive [minKm, maxKm] band.
// Pairs come back in (i, j) lexicographic order over the input slice, with
// IndexA < IndexB, so callers can rely on stable, reproducible output.
func FindPairs(peaks []domain.Peak, minKm, maxKm float64) ([]domain.PeakPair, error) {
	if minKm < 0 || maxKm < 0 || minKm > maxKm {
		return nil, fmt.Errorf("band [%.2f, %.2f]: %w", minKm, maxKm, domain.ErrInvalidDistanceBand)
	}

	var pairs []domain.PeakPair
	for i := 0; i < len(peaks); i++ {
		for j := i + 1; j < len(peaks); j++ {
			// Latitude delta alone bounds the distance from below, so a pair
			// whose meridional span already exceeds maxKm can never qualify.
			latSpanKm := math.Abs(peaks[i].Location.Lat-peaks[j].Location.Lat) * geospatial.MinKmPerDegreeLat
			if latSpanKm > maxKm {
				continue
			}

			d := geospatial.HaversineKm(
				peaks[i].Location.Lat, peaks[i].Location.Lon,
				peaks[j].Location.Lat, peaks[j].Location.Lon,
			)
			if d < minKm || d > maxKm {
				continue
			}

			pairs = append(pairs, domain.PeakPair{
				A:          peaks[i],
				B:          peaks[j],
				IndexA:     i,
				IndexB:     j,
				DistanceKm: d,
			})
		}
	}
	return pairs, nil
}
