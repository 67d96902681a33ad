package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// CatalogueStats holds row counts over the peak and result tables.
type CatalogueStats struct {
	Peaks      int    `json:"peaks"`
	Results    int    `json:"results"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// CatalogueStatsHandler returns row counts from the catalogue tables.
func CatalogueStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogueStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM peaks),
				(SELECT count(*) FROM visibility_results),
				COALESCE((SELECT max(created_at)::text FROM peaks), '')
		`)
		if err := row.Scan(&stats.Peaks, &stats.Results, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ListPeaksHandler returns peaks at or above an elevation floor, paginated.
func ListPeaksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		minElevation := c.QueryFloat("min_elevation_m", 0)
		if minElevation < 0 {
			return errBadRequest(c, "min_elevation_m must not be negative")
		}

		peaks, err := deps.Peaks.ListAbove(c.Context(), minElevation)
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset, limit := parsePageWindow(c, 100, 500)

		total := len(peaks)
		if offset >= total {
			peaks = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			peaks = peaks[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: peaks, Pagination: pg})
	}
}

// NearbyPeaksHandler returns peaks within a radius of a point.
func NearbyPeaksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 25000)
		limit := c.QueryInt("limit", 50)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 500000 {
			return errBadRequest(c, "radius must be between 1 and 500000 meters")
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		peaks, err := deps.Peaks.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(peaks)
	}
}

// SearchPeaksHandler performs fuzzy search on peak names.
func SearchPeaksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		peaks, err := deps.Peaks.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(peaks)
	}
}

// GetPeakHandler returns a single peak by ID.
func GetPeakHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "peak id is required")
		}
		peak, err := deps.Peaks.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "peak not found")
		}
		return c.JSON(peak)
	}
}

// VisibilityHandler evaluates line-of-sight between two peaks.
// GET /v1/visibility?a=<peak_uuid>&b=<peak_uuid>
func VisibilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idA := c.Query("a")
		idB := c.Query("b")
		if idA == "" || idB == "" {
			return errBadRequest(c, "a and b (peak UUIDs) are required")
		}

		result, err := deps.Visibility.Evaluate(c.Context(), idA, idB)
		if err != nil {
			if errors.Is(err, domain.ErrDegenerateGeometry) {
				return errUnprocessable(c, "peaks are coincident; no sight line exists")
			}
			return errNotFound(c, err.Error())
		}

		// Full profiles are heavy; strip them unless the client asks.
		if !c.QueryBool("profile", false) {
			trimmed := *result
			trimmed.DistancesKm = nil
			trimmed.TerrainM = nil
			trimmed.SightLineM = nil
			return c.JSON(trimmed)
		}

		return c.JSON(result)
	}
}

// PairsHandler returns candidate peak pairs inside a distance band.
// GET /v1/pairs?min_km=100&max_km=500&min_elevation_m=3962
func PairsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		minKm := c.QueryFloat("min_km", 100)
		maxKm := c.QueryFloat("max_km", 500)
		minElevation := c.QueryFloat("min_elevation_m", 3962)

		pairs, err := deps.Pairs.FindCandidates(c.Context(), minElevation, minKm, maxKm)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidDistanceBand) {
				return errBadRequest(c, "distance band must satisfy 0 <= min_km <= max_km")
			}
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fiber.Map{
			"pairs": pairs,
			"count": len(pairs),
			"band":  fiber.Map{"min_km": minKm, "max_km": maxKm},
		})
	}
}

// ResultStatsHandler returns aggregate verdict tallies over stored results.
func ResultStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Visibility.Stats(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
