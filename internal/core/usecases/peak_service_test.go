package usecases_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/usecases"
)

// --- Mock PeakRepository ---

type mockPeakRepo struct {
	listAboveFn  func(ctx context.Context, minElevationM float64) ([]domain.Peak, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Peak, error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Peak, error)
	searchFn     func(ctx context.Context, query string, limit int) ([]domain.Peak, error)
}

func (m *mockPeakRepo) Upsert(ctx context.Context, peak *domain.Peak) error        { return nil }
func (m *mockPeakRepo) UpsertBatch(ctx context.Context, peaks []domain.Peak) error { return nil }

func (m *mockPeakRepo) ListAbove(ctx context.Context, minElevationM float64) ([]domain.Peak, error) {
	if m.listAboveFn != nil {
		return m.listAboveFn(ctx, minElevationM)
	}
	return nil, nil
}

func (m *mockPeakRepo) GetByID(ctx context.Context, id string) (*domain.Peak, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPeakRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Peak, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

func (m *mockPeakRepo) Search(ctx context.Context, query string, limit int) ([]domain.Peak, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, context.Canceled // any error means miss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Tests ---

func TestPeakService_ListAbove_PreservesOrder(t *testing.T) {
	repo := &mockPeakRepo{
		listAboveFn: func(ctx context.Context, minElevationM float64) ([]domain.Peak, error) {
			if minElevationM != 3962 {
				t.Errorf("expected floor 3962, got %v", minElevationM)
			}
			return []domain.Peak{
				{ID: "1", Name: "Mount Elbert", ElevationM: 4401},
				{ID: "2", Name: "Mount Massive", ElevationM: 4398},
				{ID: "3", Name: "Mount Harvard", ElevationM: 4396},
			}, nil
		},
	}

	svc := usecases.NewPeakService(repo, nil)
	peaks, err := svc.ListAbove(context.Background(), 3962)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(peaks) != 3 {
		t.Fatalf("expected 3 peaks, got %d", len(peaks))
	}
	for i, want := range []string{"Mount Elbert", "Mount Massive", "Mount Harvard"} {
		if peaks[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, peaks[i].Name)
		}
	}
}

func TestPeakService_ListAbove_CachesResult(t *testing.T) {
	calls := 0
	repo := &mockPeakRepo{
		listAboveFn: func(ctx context.Context, minElevationM float64) ([]domain.Peak, error) {
			calls++
			return []domain.Peak{{ID: "1", Name: "Pikes Peak", ElevationM: 4302}}, nil
		},
	}

	svc := usecases.NewPeakService(repo, newMockCache())
	for i := 0; i < 3; i++ {
		peaks, err := svc.ListAbove(context.Background(), 4000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(peaks) != 1 {
			t.Fatalf("expected 1 peak, got %d", len(peaks))
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repository call with warm cache, got %d", calls)
	}
}

func TestPeakService_FindNearby_ClampLimit(t *testing.T) {
	called := false
	repo := &mockPeakRepo{
		findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Peak, error) {
			called = true
			if limit != 50 {
				t.Errorf("expected limit clamped to 50, got %d", limit)
			}
			return nil, nil
		},
	}

	svc := usecases.NewPeakService(repo, nil)
	_, _ = svc.FindNearby(context.Background(), 39.0, -106.0, 5000, 999)
	if !called {
		t.Error("repo was not called")
	}
}

func TestPeakService_Search_EmptyQuery(t *testing.T) {
	svc := usecases.NewPeakService(&mockPeakRepo{}, nil)
	_, err := svc.Search(context.Background(), "", 10)
	if err == nil {
		t.Error("expected error for empty query")
	}
}

func TestPeakService_GetByID(t *testing.T) {
	repo := &mockPeakRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Peak, error) {
			return &domain.Peak{ID: id, Name: "Longs Peak", ElevationM: 4346}, nil
		},
	}

	svc := usecases.NewPeakService(repo, nil)
	peak, err := svc.GetByID(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.ID != "abc-123" {
		t.Errorf("expected id abc-123, got %s", peak.ID)
	}
}
