package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/aritzolea/peaksight/internal/adapters/nats"
	"github.com/aritzolea/peaksight/internal/core/usecases"
	"github.com/aritzolea/peaksight/internal/pkg/config"
	"github.com/aritzolea/peaksight/internal/pkg/logging"
)

// The relay consumes evaluation events from JetStream and republishes
// compact summaries on the broadcast subject for WebSocket dashboards.
func main() {
	cfg, err := config.Load("peaksight-relay")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("peaksight-relay", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	notify := usecases.NewNotifyService(publisher)

	if err := subscriber.SubscribeResults(ctx, notify.HandleResult); err != nil {
		log.Fatalf("subscribe results: %v", err)
	}
	if err := subscriber.SubscribeProgress(ctx, notify.HandleProgress); err != nil {
		log.Fatalf("subscribe progress: %v", err)
	}

	slog.Info("relay started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()
}
