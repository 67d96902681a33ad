package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aritzolea/peaksight/internal/adapters/http"
	natsadapter "github.com/aritzolea/peaksight/internal/adapters/nats"
	"github.com/aritzolea/peaksight/internal/adapters/openelevation"
	"github.com/aritzolea/peaksight/internal/adapters/postgres"
	"github.com/aritzolea/peaksight/internal/adapters/valkey"
	"github.com/aritzolea/peaksight/internal/core/elevation"
	"github.com/aritzolea/peaksight/internal/core/ports"
	"github.com/aritzolea/peaksight/internal/core/usecases"
	"github.com/aritzolea/peaksight/internal/pkg/config"
	"github.com/aritzolea/peaksight/internal/pkg/logging"
	"github.com/aritzolea/peaksight/internal/pkg/metrics"
	"github.com/aritzolea/peaksight/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("peaksight-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("peaksight-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Terrain source
	source := buildElevationSource(cfg, cache)

	// Repos
	peakRepo := postgres.NewPeakRepo(db)
	resultRepo := postgres.NewResultRepo(db)

	// Pool gauges for /metrics
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	// Use cases. Nil adapters must not end up inside interface values, or the
	// services' nil checks stop working.
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var publisher ports.EventPublisher
	if nc != nil {
		publisher = nc
	}
	peakSvc := usecases.NewPeakService(peakRepo, cacheSvc)
	visibilitySvc := usecases.NewVisibilityService(peakRepo, resultRepo, source, cacheSvc, publisher)
	pairSvc := usecases.NewPairService(peakRepo)

	deps := &http.Dependencies{
		Peaks:      peakSvc,
		Visibility: visibilitySvc,
		Pairs:      pairSvc,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "PeakSight API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// buildElevationSource picks the terrain source per configuration. A missing
// or unreadable grid file degrades to an empty cache rather than failing
// startup.
func buildElevationSource(cfg *config.Config, cache *valkey.Cache) ports.ElevationSource {
	switch cfg.Elevation.Source {
	case "valkey":
		if cache != nil {
			return valkey.NewElevationSource(cache, cfg.Elevation.Resolution)
		}
		slog.Warn("valkey elevation source requested but cache unavailable, using empty grid")
		return elevation.NewGridCache(nil, cfg.Elevation.Resolution)
	case "api":
		client := openelevation.NewClient(cfg.Elevation.APIURL, cfg.Elevation.ChunkSize)
		return openelevation.NewSource(client, cfg.Elevation.Resolution)
	default:
		grid, err := elevation.LoadGridFile(cfg.Elevation.CacheFile, cfg.Elevation.Resolution)
		if err != nil {
			slog.Warn("grid cache unreadable, using empty grid", "file", cfg.Elevation.CacheFile, "error", err)
			return elevation.NewGridCache(nil, cfg.Elevation.Resolution)
		}
		if grid.Empty() {
			slog.Warn("elevation grid cache is empty, terrain will read as sea level", "file", cfg.Elevation.CacheFile)
		}
		return grid
	}
}
