package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// PeakRepo implements ports.PeakRepository with pgx.
type PeakRepo struct {
	db *DB
}

// NewPeakRepo creates a new PeakRepo.
func NewPeakRepo(db *DB) *PeakRepo {
	return &PeakRepo{db: db}
}

// Upsert inserts or updates a single peak, keyed by name and location.
func (r *PeakRepo) Upsert(ctx context.Context, p *domain.Peak) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO peaks (name, location, elevation_m, source)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5)
		ON CONFLICT (name, location) DO UPDATE
		SET elevation_m = EXCLUDED.elevation_m, source = EXCLUDED.source
	`, p.Name, p.Location.Lon, p.Location.Lat, p.ElevationM, p.Source)
	return err
}

// UpsertBatch inserts many peaks using pgx.Batch.
func (r *PeakRepo) UpsertBatch(ctx context.Context, peaks []domain.Peak) error {
	batch := &pgx.Batch{}
	for _, p := range peaks {
		batch.Queue(`
			INSERT INTO peaks (name, location, elevation_m, source)
			VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5)
			ON CONFLICT (name, location) DO UPDATE
			SET elevation_m = EXCLUDED.elevation_m, source = EXCLUDED.source
		`, p.Name, p.Location.Lon, p.Location.Lat, p.ElevationM, p.Source)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range peaks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a peak by UUID.
func (r *PeakRepo) GetByID(ctx context.Context, id string) (*domain.Peak, error) {
	var p domain.Peak
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, COALESCE(source, ''), created_at
		FROM peaks WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Name,
		&p.Location.Lat, &p.Location.Lon,
		&p.ElevationM, &p.Source, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListAbove returns all peaks at or above the elevation floor. Ordering by
// insertion id keeps pair indices stable between runs over the same catalogue.
func (r *PeakRepo) ListAbove(ctx context.Context, minElevationM float64) ([]domain.Peak, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, COALESCE(source, ''), created_at
		FROM peaks
		WHERE elevation_m >= $1
		ORDER BY created_at, id
	`, minElevationM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPeaks(rows)
}

// FindNearby returns peaks within radiusMeters using PostGIS ST_DWithin.
func (r *PeakRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Peak, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, COALESCE(source, ''), created_at,
		       ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) as distance
		FROM peaks
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peaks []domain.Peak
	for rows.Next() {
		var p domain.Peak
		var dist float64
		if err := rows.Scan(
			&p.ID, &p.Name,
			&p.Location.Lat, &p.Location.Lon,
			&p.ElevationM, &p.Source, &p.CreatedAt,
			&dist,
		); err != nil {
			return nil, err
		}
		p.Distance = &dist
		peaks = append(peaks, p)
	}
	return peaks, rows.Err()
}

// Search performs fuzzy + full-text search on peak names.
func (r *PeakRepo) Search(ctx context.Context, query string, limit int) ([]domain.Peak, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, COALESCE(source, ''), created_at
		FROM peaks
		WHERE name_vector @@ plainto_tsquery('english', $1)
		   OR name %> $1
		ORDER BY similarity(name, $1) DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPeaks(rows)
}

func scanPeaks(rows pgx.Rows) ([]domain.Peak, error) {
	var peaks []domain.Peak
	for rows.Next() {
		var p domain.Peak
		if err := rows.Scan(
			&p.ID, &p.Name,
			&p.Location.Lat, &p.Location.Lon,
			&p.ElevationM, &p.Source, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		peaks = append(peaks, p)
	}
	return peaks, rows.Err()
}
