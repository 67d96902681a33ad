package domain

import "errors"

// ErrDegenerateGeometry is returned when a line-of-sight evaluation is asked
// for two coincident (or near-coincident) peaks. The sight-line interpolation
// divides by the path length, so the condition is rejected up front instead of
// producing NaN profiles.
var ErrDegenerateGeometry = errors.New("degenerate geometry: peaks are coincident or nearly coincident")

// ErrInvalidDistanceBand is returned when a pair search is configured with a
// minimum distance above the maximum, or with negative bounds.
var ErrInvalidDistanceBand = errors.New("invalid distance band: min must be non-negative and not exceed max")
