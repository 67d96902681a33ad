package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/aritzolea/peaksight/internal/adapters/openelevation"
	"github.com/aritzolea/peaksight/internal/adapters/overpass"
	"github.com/aritzolea/peaksight/internal/adapters/postgres"
	"github.com/aritzolea/peaksight/internal/adapters/valkey"
	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/elevation"
	"github.com/aritzolea/peaksight/internal/pkg/config"
	"github.com/aritzolea/peaksight/internal/pkg/metrics"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source  string        `json:"source"`
	Regions []RegionEntry `json:"regions"`
}

type RegionEntry struct {
	Name   string  `json:"name"`
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

func (r RegionEntry) Bounds() domain.Bounds {
	return domain.Bounds{MinLat: r.MinLat, MinLon: r.MinLon, MaxLat: r.MaxLat, MaxLon: r.MaxLon}
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("peaksight-prefetch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Load manifest
	manifestPath := "regions.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("PeakSight prefetcher: %d regions from %s", len(manifest.Regions), manifest.Source)

	// Filter regions (optional CLI arg: name list)
	nameFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			nameFilter[strings.TrimSpace(s)] = true
		}
	}

	peakRepo := postgres.NewPeakRepo(db)
	overpassClient := overpass.NewClient(overpass.DefaultURL)
	elevClient := openelevation.NewClient(cfg.Elevation.APIURL, cfg.Elevation.ChunkSize)

	grid := make(map[string]float64)
	var gridMu sync.Mutex

	var wg sync.WaitGroup
	sem := make(chan struct{}, 2) // Overpass rate-limits aggressive clients

	for _, region := range manifest.Regions {
		if len(nameFilter) > 0 && !nameFilter[region.Name] {
			continue
		}

		wg.Add(1)
		go func(r RegionEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := prefetchRegion(ctx, peakRepo, overpassClient, elevClient, cfg, r, grid, &gridMu); err != nil {
				log.Printf("ERROR [%s]: %v", r.Name, err)
			}
		}(region)
	}

	wg.Wait()

	log.Printf("writing %d grid points to %s", len(grid), cfg.Elevation.CacheFile)
	if err := elevation.SaveGridFile(cfg.Elevation.CacheFile, grid); err != nil {
		log.Fatalf("write grid cache: %v", err)
	}

	// Mirror the grid into valkey when the shared cache is the configured source
	if cfg.Elevation.Source == "valkey" {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			log.Printf("valkey unavailable, grid not mirrored: %v", err)
		} else {
			defer cache.Close()
			source := valkey.NewElevationSource(cache, cfg.Elevation.Resolution)
			if err := source.Store(ctx, grid); err != nil {
				log.Printf("valkey store: %v", err)
			} else {
				log.Printf("grid mirrored to valkey at %s", cfg.Valkey.Addr)
			}
		}
	}

	log.Println("prefetch complete")
}

// ---------------------------------------------------------------------------
// Per-region prefetch
// ---------------------------------------------------------------------------

func prefetchRegion(
	ctx context.Context,
	peaks *postgres.PeakRepo,
	overpassClient *overpass.Client,
	elevClient *openelevation.Client,
	cfg *config.Config,
	region RegionEntry,
	grid map[string]float64,
	gridMu *sync.Mutex,
) error {
	log.Printf("[%s] fetching peaks above %.0f m", region.Name, cfg.Analysis.MinElevationM)

	found, err := overpassClient.FetchPeaks(ctx, region.Bounds(), cfg.Analysis.MinElevationM)
	if err != nil {
		return err
	}
	log.Printf("[%s] %d peaks found", region.Name, len(found))

	if len(found) > 0 {
		if err := peaks.UpsertBatch(ctx, found); err != nil {
			return err
		}
		metrics.PeaksIngested.WithLabelValues(region.Name).Add(float64(len(found)))
	}

	// Elevation grid over the region bounding box
	coords := buildRegionGrid(region.Bounds(), cfg.Elevation.Resolution)
	log.Printf("[%s] grid size: %d points", region.Name, len(coords))

	elevations := elevClient.LookupBatch(ctx, coords)

	gridMu.Lock()
	for i, c := range coords {
		grid[elevation.GridKey(c.Lat, c.Lon, cfg.Elevation.Resolution)] = elevations[i]
	}
	gridMu.Unlock()

	log.Printf("[%s] done", region.Name)
	return nil
}

// buildRegionGrid lays a regular lattice over the bounding box at the given
// spacing, exclusive of the north and east edges.
func buildRegionGrid(b domain.Bounds, resolution float64) []domain.GeoPoint {
	var coords []domain.GeoPoint
	for lat := b.MinLat; lat < b.MaxLat; lat += resolution {
		for lon := b.MinLon; lon < b.MaxLon; lon += resolution {
			coords = append(coords, domain.GeoPoint{Lat: lat, Lon: lon})
		}
	}
	return coords
}
