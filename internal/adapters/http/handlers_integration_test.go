//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/aritzolea/peaksight/internal/adapters/http"
	"github.com/aritzolea/peaksight/internal/adapters/postgres"
	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/usecases"
	"github.com/aritzolea/peaksight/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("peaksight-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	dsn := cfg.Database.DSN()
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real DB and repos, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	peakRepo := postgres.NewPeakRepo(db)
	resultRepo := postgres.NewResultRepo(db)

	return &handler.Dependencies{
		Peaks:      usecases.NewPeakService(peakRepo, nil),
		Visibility: usecases.NewVisibilityService(peakRepo, resultRepo, flatSource{}, nil, nil),
		Pairs:      usecases.NewPairService(peakRepo),
		DB:         db,
	}
}

// seedTestPeak inserts a test peak and returns its UUID.
func seedTestPeak(t *testing.T, db *postgres.DB, name string, lat, lon, elev float64) string {
	ctx := context.Background()
	var id string
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO peaks (name, location, elevation_m, source)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, 'test')
		ON CONFLICT (name, location) DO UPDATE SET elevation_m = EXCLUDED.elevation_m
		RETURNING id
	`, name, lon, lat, elev).Scan(&id); err != nil {
		t.Fatalf("seed peak: %v", err)
	}
	return id
}

// TestListPeaks_Integration tests peak listing against a real database.
func TestListPeaks_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	seedTestPeak(t, db, "Test Elbert", 39.1178, -106.4454, 4401)
	seedTestPeak(t, db, "Test Massive", 39.1875, -106.4757, 4398)

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/peaks?min_elevation_m=4000", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Peak       `json:"data"`
		Pagination struct{ Total int } `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.Pagination.Total < 2 {
		t.Errorf("expected at least 2 peaks, got %d", result.Pagination.Total)
	}
}

// TestNearbyPeaks_Integration tests the geospatial query against a real database.
func TestNearbyPeaks_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	seedTestPeak(t, db, "Test Spatial Peak", 39.1178, -106.4454, 4200)

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/peaks/nearby?lat=39.1178&lon=-106.4454&radius=5000", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var peaks []domain.Peak
	if err := json.NewDecoder(resp.Body).Decode(&peaks); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(peaks) == 0 {
		t.Error("expected at least 1 nearby peak, got 0")
	}
}

// TestVisibility_Integration evaluates a real pair end to end, including
// result persistence.
func TestVisibility_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	idA := seedTestPeak(t, db, "Test LOS A", 39.1178, -106.4454, 4401)
	idB := seedTestPeak(t, db, "Test LOS B", 38.8409, -105.0422, 4302)

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/visibility?a="+idA+"&b="+idB, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.VisibilityResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %f", result.DistanceKm)
	}
}
