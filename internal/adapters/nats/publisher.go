package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "VIS_RESULTS",
			Subjects:  []string{"peaksight.result.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "BATCH_PROGRESS",
			Subjects:  []string{"peaksight.batch.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishResult publishes a completed evaluation keyed by its verdict, so
// consumers can subscribe to clear sightlines only.
func (p *Publisher) PublishResult(ctx context.Context, result *domain.VisibilityResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("peaksight.result."+result.Verdict(), data)
	return err
}

// PublishProgress publishes a batch progress snapshot.
func (p *Publisher) PublishProgress(ctx context.Context, progress *domain.BatchProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("peaksight.batch.progress", data)
	return err
}

// PublishBroadcast fans out raw bytes to live WebSocket relays, outside
// JetStream.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("peaksight.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
