package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/aritzolea/peaksight/internal/adapters/nats"
	"github.com/aritzolea/peaksight/internal/adapters/postgres"
	"github.com/aritzolea/peaksight/internal/core/elevation"
	"github.com/aritzolea/peaksight/internal/core/usecases"
	"github.com/aritzolea/peaksight/internal/pkg/config"
)

// The analyzer runs a one-shot survey over the catalogue: find every peak
// pair inside the distance band and evaluate line-of-sight for each.
func main() {
	minKm := flag.Float64("min-km", 0, "minimum pair separation in km (default from config)")
	maxKm := flag.Float64("max-km", 0, "maximum pair separation in km (default from config)")
	minElev := flag.Float64("min-elevation", 0, "elevation floor in meters (default from config)")
	publish := flag.Bool("publish", false, "publish results and progress to NATS")
	reportPath := flag.String("report", "", "write the survey report as JSON to this file")
	flag.Parse()

	cfg, err := config.Load("peaksight-analyzer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *minKm == 0 {
		*minKm = cfg.Analysis.MinDistanceKm
	}
	if *maxKm == 0 {
		*maxKm = cfg.Analysis.MaxDistanceKm
	}
	if *minElev == 0 {
		*minElev = cfg.Analysis.MinElevationM
	}

	// Cancel the batch on Ctrl-C; a partial report is still printed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("interrupt received, finishing in-flight evaluations")
		cancel()
	}()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	source, err := elevation.LoadGridFile(cfg.Elevation.CacheFile, cfg.Elevation.Resolution)
	if err != nil {
		log.Fatalf("elevation grid: %v", err)
	}
	if source.Empty() {
		log.Printf("WARNING: elevation cache %s is empty, terrain will read as sea level", cfg.Elevation.CacheFile)
	} else {
		log.Printf("elevation grid: %d points at %.3f deg", source.Len(), source.Resolution())
	}

	var publisher *natsadapter.Publisher
	if *publish {
		publisher, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer publisher.Close()
	}

	peakRepo := postgres.NewPeakRepo(db)
	resultRepo := postgres.NewResultRepo(db)

	pairSvc := usecases.NewPairService(peakRepo)
	var visibilitySvc *usecases.VisibilityService
	var batchSvc *usecases.BatchService
	if publisher != nil {
		visibilitySvc = usecases.NewVisibilityService(peakRepo, resultRepo, source, nil, publisher)
		batchSvc = usecases.NewBatchService(visibilitySvc, publisher, cfg.Analysis.Workers)
	} else {
		visibilitySvc = usecases.NewVisibilityService(peakRepo, resultRepo, source, nil, nil)
		batchSvc = usecases.NewBatchService(visibilitySvc, nil, cfg.Analysis.Workers)
	}

	log.Printf("pair search: band [%.0f, %.0f] km, floor %.0f m", *minKm, *maxKm, *minElev)
	pairs, err := pairSvc.FindCandidates(ctx, *minElev, *minKm, *maxKm)
	if err != nil {
		log.Fatalf("pair search: %v", err)
	}
	log.Printf("%d candidate pairs", len(pairs))

	report, err := batchSvc.Run(ctx, pairs)
	if err != nil && report == nil {
		log.Fatalf("batch: %v", err)
	}
	if err != nil {
		log.Printf("batch interrupted: %v", err)
	}

	fmt.Println()
	fmt.Println("Survey report")
	fmt.Println("-------------")
	fmt.Printf("  pairs:   %d\n", report.TotalPairs)
	fmt.Printf("  clear:   %d\n", report.Clear)
	fmt.Printf("  blocked: %d\n", report.Blocked)
	fmt.Printf("  failed:  %d\n", report.Failed)
	fmt.Printf("  took:    %s\n", report.Duration)

	if *reportPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("encode report: %v", err)
		}
		if err := os.WriteFile(*reportPath, data, 0o644); err != nil {
			log.Fatalf("write report: %v", err)
		}
		log.Printf("report written to %s", *reportPath)
	}
}
