package ports

import (
	"context"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// PeakRepository persists summit records.
type PeakRepository interface {
	Upsert(ctx context.Context, peak *domain.Peak) error
	UpsertBatch(ctx context.Context, peaks []domain.Peak) error
	GetByID(ctx context.Context, id string) (*domain.Peak, error)
	// ListAbove returns all peaks at or above the elevation floor (meters),
	// ordered by insertion so pair indices are stable across runs.
	ListAbove(ctx context.Context, minElevationM float64) ([]domain.Peak, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Peak, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Peak, error)
}

// ResultRepository persists visibility evaluation outcomes.
type ResultRepository interface {
	Insert(ctx context.Context, result *domain.VisibilityResult) error
	Stats(ctx context.Context) (*domain.ResultStats, error)
	ListRecent(ctx context.Context, limit int) ([]domain.VisibilityResult, error)
	// DeleteSince removes results evaluated at or after the given cutoff;
	// used to roll back a partially persisted batch.
	DeleteSince(ctx context.Context, cutoff string) error
}
