package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/ports"
)

// PeakService handles peak catalogue business logic.
type PeakService struct {
	peaks ports.PeakRepository
	cache ports.CacheService
}

// NewPeakService creates a new PeakService.
func NewPeakService(peaks ports.PeakRepository, cache ports.CacheService) *PeakService {
	return &PeakService{peaks: peaks, cache: cache}
}

// ListAbove returns all peaks at or above the elevation floor, in insertion
// order. The order matters downstream: pair indices refer into this slice.
func (s *PeakService) ListAbove(ctx context.Context, minElevationM float64) ([]domain.Peak, error) {
	cacheKey := fmt.Sprintf("peaks:above:%.0f", minElevationM)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var peaks []domain.Peak
			if err := json.Unmarshal(data, &peaks); err == nil {
				return peaks, nil
			}
		}
	}

	peaks, err := s.peaks.ListAbove(ctx, minElevationM)
	if err != nil {
		return nil, err
	}

	// Cache for 10 minutes; the catalogue only moves on ingest runs.
	if s.cache != nil {
		if data, err := json.Marshal(peaks); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return peaks, nil
}

// FindNearby returns peaks within radiusMeters of the given point.
func (s *PeakService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Peak, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("peaks:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var peaks []domain.Peak
			if err := json.Unmarshal(data, &peaks); err == nil {
				return peaks, nil
			}
		}
	}

	peaks, err := s.peaks.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(peaks); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return peaks, nil
}

// Search performs fuzzy + full-text search on peak names.
func (s *PeakService) Search(ctx context.Context, query string, limit int) ([]domain.Peak, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("peaks:search:%s:%d", query, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var peaks []domain.Peak
			if err := json.Unmarshal(data, &peaks); err == nil {
				return peaks, nil
			}
		}
	}

	peaks, err := s.peaks.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(peaks); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return peaks, nil
}

// GetByID returns a single peak.
func (s *PeakService) GetByID(ctx context.Context, id string) (*domain.Peak, error) {
	cacheKey := "peaks:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var peak domain.Peak
			if err := json.Unmarshal(data, &peak); err == nil {
				return &peak, nil
			}
		}
	}

	peak, err := s.peaks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(peak); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return peak, nil
}
