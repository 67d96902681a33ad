package elevation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGridFile reads a JSON elevation cache written by SaveGridFile (or the
// prefetcher) and wraps it in a GridCache at the given resolution. A missing
// file is not an error: it yields an empty cache, so callers degrade to
// zero-terrain verdicts instead of refusing to run.
func LoadGridFile(path string, resolution float64) (*GridCache, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewGridCache(nil, resolution), nil
		}
		return nil, fmt.Errorf("read elevation cache %s: %w", path, err)
	}

	var data map[string]float64
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse elevation cache %s: %w", path, err)
	}

	return NewGridCache(data, resolution), nil
}

// SaveGridFile writes the elevation mapping as a flat JSON object keyed by
// canonical grid keys.
func SaveGridFile(path string, data map[string]float64) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal elevation cache: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write elevation cache %s: %w", path, err)
	}
	return nil
}
