package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/los"
	"github.com/aritzolea/peaksight/internal/core/ports"
	"github.com/aritzolea/peaksight/internal/pkg/metrics"
)

// VisibilityService evaluates line-of-sight between catalogued peaks.
type VisibilityService struct {
	peaks     ports.PeakRepository
	results   ports.ResultRepository
	source    ports.ElevationSource
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewVisibilityService creates a new VisibilityService.
func NewVisibilityService(
	peaks ports.PeakRepository,
	results ports.ResultRepository,
	source ports.ElevationSource,
	cache ports.CacheService,
	publisher ports.EventPublisher,
) *VisibilityService {
	return &VisibilityService{
		peaks:     peaks,
		results:   results,
		source:    source,
		cache:     cache,
		publisher: publisher,
	}
}

// Evaluate resolves two peak IDs and runs a line-of-sight evaluation between
// them. Results are cached under an order-normalised key since visibility is
// symmetric. Coincident peaks surface domain.ErrDegenerateGeometry.
func (s *VisibilityService) Evaluate(ctx context.Context, idA, idB string) (*domain.VisibilityResult, error) {
	cacheKey := visCacheKey(idA, idB)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var result domain.VisibilityResult
			if err := json.Unmarshal(data, &result); err == nil {
				return &result, nil
			}
		}
	}

	peakA, err := s.peaks.GetByID(ctx, idA)
	if err != nil {
		return nil, fmt.Errorf("resolve peak %s: %w", idA, err)
	}
	peakB, err := s.peaks.GetByID(ctx, idB)
	if err != nil {
		return nil, fmt.Errorf("resolve peak %s: %w", idB, err)
	}

	result, err := s.EvaluatePeaks(ctx, *peakA, *peakB)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return result, nil
}

// EvaluatePeaks runs the engine on two already-resolved peaks, records the
// outcome, and publishes a result event. Persistence and publishing are
// best-effort; the computed verdict is returned regardless.
func (s *VisibilityService) EvaluatePeaks(ctx context.Context, a, b domain.Peak) (*domain.VisibilityResult, error) {
	start := time.Now()
	result, err := los.Evaluate(a, b, s.source)
	if err != nil {
		return nil, err
	}
	metrics.ObserveEvaluation(result.Verdict(), time.Since(start))

	if s.results != nil {
		_ = s.results.Insert(ctx, result)
	}
	if s.publisher != nil {
		_ = s.publisher.PublishResult(ctx, result)
	}

	return result, nil
}

// Stats returns aggregate verdict tallies over persisted results.
func (s *VisibilityService) Stats(ctx context.Context) (*domain.ResultStats, error) {
	if s.results == nil {
		return &domain.ResultStats{}, nil
	}
	return s.results.Stats(ctx)
}

func visCacheKey(idA, idB string) string {
	if idB < idA {
		idA, idB = idB, idA
	}
	return "vis:" + idA + ":" + idB
}
