package domain

import (
	"time"
)

// Peak represents a named summit with a surveyed elevation.
type Peak struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   GeoPoint  `json:"location"`
	ElevationM float64   `json:"elevation_m"`
	Source     string    `json:"source,omitempty"`   // dataset the peak came from (e.g. "osm")
	Distance   *float64  `json:"distance,omitempty"` // computed field, meters
	CreatedAt  time.Time `json:"created_at"`
}

// PeakPair is a candidate pair of peaks whose separation falls inside a
// requested distance band. IndexA < IndexB always holds; the indices refer to
// the source collection the pair search ran over.
type PeakPair struct {
	A          Peak    `json:"a"`
	B          Peak    `json:"b"`
	IndexA     int     `json:"index_a"`
	IndexB     int     `json:"index_b"`
	DistanceKm float64 `json:"distance_km"`
}

// Label renders a human-readable pair name for logs and progress events.
func (p PeakPair) Label() string {
	return p.A.Name + " → " + p.B.Name
}

// VisibilityResult is the outcome of one line-of-sight evaluation between two
// peaks. It is fully populated on construction and never mutated afterwards.
type VisibilityResult struct {
	PeakA Peak `json:"peak_a"`
	PeakB Peak `json:"peak_b"`

	DistanceKm     float64   `json:"distance_km"`
	HorizonLimitKm float64   `json:"horizon_limit_km"`
	CurvatureDropM float64   `json:"curvature_drop_m"` // at path midpoint, refraction-adjusted
	Clear          bool      `json:"clear"`
	CacheEmpty     bool      `json:"cache_empty"` // elevation source had no data; terrain is all zeros
	EvaluatedAt    time.Time `json:"evaluated_at"`

	// Per-station profile, kept for plotting and reporting. All three slices
	// have the same length (the engine's sampling constant).
	DistancesKm []float64 `json:"distances_km"`
	TerrainM    []float64 `json:"terrain_m"`
	SightLineM  []float64 `json:"sight_line_m"`
}

// Verdict renders the two-way outcome of a completed evaluation. Evaluation
// failures never produce a result and are tallied separately.
func (r *VisibilityResult) Verdict() string {
	if r.Clear {
		return "clear"
	}
	return "blocked"
}

// BatchReport summarises a batch evaluation run. Failed counts pairs whose
// evaluation returned an error; it is never folded into Blocked.
type BatchReport struct {
	TotalPairs int           `json:"total_pairs"`
	Clear      int           `json:"clear"`
	Blocked    int           `json:"blocked"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
}

// BatchProgress is published while a batch run is in flight.
type BatchProgress struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Clear     int    `json:"clear"`
	Blocked   int    `json:"blocked"`
	Failed    int    `json:"failed"`
	LastPair  string `json:"last_pair,omitempty"`
}

// ResultStats are aggregate tallies over persisted visibility results.
type ResultStats struct {
	Total   int `json:"total"`
	Clear   int `json:"clear"`
	Blocked int `json:"blocked"`
}
