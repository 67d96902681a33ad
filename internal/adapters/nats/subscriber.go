package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeResults delivers every published evaluation result, any verdict.
func (s *Subscriber) SubscribeResults(ctx context.Context, handler func(ctx context.Context, result *domain.VisibilityResult) error) error {
	sub, err := s.js.Subscribe("peaksight.result.>", func(msg *nats.Msg) {
		var result domain.VisibilityResult
		if err := json.Unmarshal(msg.Data, &result); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &result); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("result-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeProgress delivers batch progress snapshots.
func (s *Subscriber) SubscribeProgress(ctx context.Context, handler func(ctx context.Context, progress *domain.BatchProgress) error) error {
	sub, err := s.js.Subscribe("peaksight.batch.progress", func(msg *nats.Msg) {
		var progress domain.BatchProgress
		if err := json.Unmarshal(msg.Data, &progress); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &progress); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("progress-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
