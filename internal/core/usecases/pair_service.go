package usecases

import (
	"context"
	"fmt"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/pairing"
	"github.com/aritzolea/peaksight/internal/core/ports"
)

// PairService finds candidate peak pairs inside a distance band.
type PairService struct {
	peaks ports.PeakRepository
}

// NewPairService creates a new PairService.
func NewPairService(peaks ports.PeakRepository) *PairService {
	return &PairService{peaks: peaks}
}

// FindCandidates loads all peaks at or above the elevation floor and returns
// every pair whose separation falls inside [minKm, maxKm]. An inverted or
// negative band surfaces domain.ErrInvalidDistanceBand before any repository
// work happens.
func (s *PairService) FindCandidates(ctx context.Context, minElevationM, minKm, maxKm float64) ([]domain.PeakPair, error) {
	if minKm < 0 || maxKm < 0 || minKm > maxKm {
		return nil, fmt.Errorf("band [%.2f, %.2f]: %w", minKm, maxKm, domain.ErrInvalidDistanceBand)
	}

	peaks, err := s.peaks.ListAbove(ctx, minElevationM)
	if err != nil {
		return nil, fmt.Errorf("list peaks: %w", err)
	}

	return pairing.FindPairs(peaks, minKm, maxKm)
}
