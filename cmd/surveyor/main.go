package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/aritzolea/peaksight/internal/adapters/nats"
	"github.com/aritzolea/peaksight/internal/adapters/postgres"
	"github.com/aritzolea/peaksight/internal/core/elevation"
	"github.com/aritzolea/peaksight/internal/core/ports"
	"github.com/aritzolea/peaksight/internal/core/usecases"
	"github.com/aritzolea/peaksight/internal/pkg/config"
	"github.com/aritzolea/peaksight/internal/workflows"
)

func main() {
	cfg, err := config.Load("peaksight-surveyor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Keep a nil publisher out of interface values so downstream nil checks hold.
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, survey events will not be published", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	source, err := elevation.LoadGridFile(cfg.Elevation.CacheFile, cfg.Elevation.Resolution)
	if err != nil {
		log.Fatalf("elevation grid: %v", err)
	}

	peakRepo := postgres.NewPeakRepo(db)
	resultRepo := postgres.NewResultRepo(db)

	pairSvc := usecases.NewPairService(peakRepo)
	visibilitySvc := usecases.NewVisibilityService(peakRepo, resultRepo, source, nil, publisher)
	batchSvc := usecases.NewBatchService(visibilitySvc, publisher, cfg.Analysis.Workers)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: "localhost:7233",
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, "survey-queue", worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.SurveyWorkflow)
	w.RegisterActivity(&workflows.SurveyActivities{
		Pairs:     pairSvc,
		Batch:     batchSvc,
		Results:   resultRepo,
		Source:    source,
		Publisher: publisher,
	})

	log.Println("surveyor worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
