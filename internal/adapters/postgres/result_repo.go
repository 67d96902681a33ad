package postgres

import (
	"context"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// ResultRepo implements ports.ResultRepository with pgx. Profile arrays are
// stored as float8[] columns so results can be re-plotted without another
// engine run.
type ResultRepo struct {
	db *DB
}

// NewResultRepo creates a new ResultRepo.
func NewResultRepo(db *DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Insert persists one evaluation outcome.
func (r *ResultRepo) Insert(ctx context.Context, res *domain.VisibilityResult) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO visibility_results
			(peak_a_name, peak_b_name, distance_km, horizon_limit_km, curvature_drop_m,
			 clear, cache_empty, evaluated_at, distances_km, terrain_m, sight_line_m)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		res.PeakA.Name, res.PeakB.Name,
		res.DistanceKm, res.HorizonLimitKm, res.CurvatureDropM,
		res.Clear, res.CacheEmpty, res.EvaluatedAt,
		res.DistancesKm, res.TerrainM, res.SightLineM,
	)
	return err
}

// Stats returns aggregate verdict tallies.
func (r *ResultRepo) Stats(ctx context.Context) (*domain.ResultStats, error) {
	var s domain.ResultStats
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE clear),
		       COUNT(*) FILTER (WHERE NOT clear)
		FROM visibility_results
	`).Scan(&s.Total, &s.Clear, &s.Blocked)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListRecent returns the most recently evaluated results, newest first,
// without the bulky profile arrays.
func (r *ResultRepo) ListRecent(ctx context.Context, limit int) ([]domain.VisibilityResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT peak_a_name, peak_b_name, distance_km, horizon_limit_km,
		       curvature_drop_m, clear, cache_empty, evaluated_at
		FROM visibility_results
		ORDER BY evaluated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.VisibilityResult
	for rows.Next() {
		var res domain.VisibilityResult
		if err := rows.Scan(
			&res.PeakA.Name, &res.PeakB.Name,
			&res.DistanceKm, &res.HorizonLimitKm, &res.CurvatureDropM,
			&res.Clear, &res.CacheEmpty, &res.EvaluatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// DeleteSince removes results evaluated at or after the cutoff (RFC 3339).
// Saga compensation uses this to roll back a partially persisted batch.
func (r *ResultRepo) DeleteSince(ctx context.Context, cutoff string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM visibility_results WHERE evaluated_at >= $1::timestamptz
	`, cutoff)
	return err
}
