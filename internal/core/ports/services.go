package ports

import (
	"context"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// ElevationSource supplies best-effort terrain elevations for arbitrary
// coordinates. Lookup never fails: a source with no data for a coordinate
// returns 0.0. Empty reports whether the source holds no data at all, so
// callers can tell an all-zero profile from real sea-level terrain.
type ElevationSource interface {
	Lookup(lat, lon float64) float64
	Empty() bool
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishResult(ctx context.Context, result *domain.VisibilityResult) error
	PublishProgress(ctx context.Context, progress *domain.BatchProgress) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeResults(ctx context.Context, handler func(ctx context.Context, result *domain.VisibilityResult) error) error
	SubscribeProgress(ctx context.Context, handler func(ctx context.Context, progress *domain.BatchProgress) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
