package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/ports"
)

// NotifyService turns evaluation events into compact broadcast messages for
// WebSocket subscribers. Full results stay on their own subjects; broadcasts
// carry only what a dashboard needs.
type NotifyService struct {
	publisher ports.EventPublisher
}

// NewNotifyService creates a new NotifyService.
func NewNotifyService(publisher ports.EventPublisher) *NotifyService {
	return &NotifyService{publisher: publisher}
}

type resultBroadcast struct {
	Type       string  `json:"type"`
	Pair       string  `json:"pair"`
	DistanceKm float64 `json:"distance_km"`
	Verdict    string  `json:"verdict"`
	CacheEmpty bool    `json:"cache_empty,omitempty"`
}

type progressBroadcast struct {
	Type      string `json:"type"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	LastPair  string `json:"last_pair,omitempty"`
}

// HandleResult summarises a completed evaluation and broadcasts it.
func (s *NotifyService) HandleResult(ctx context.Context, result *domain.VisibilityResult) error {
	msg := resultBroadcast{
		Type:       "result",
		Pair:       result.PeakA.Name + " → " + result.PeakB.Name,
		DistanceKm: result.DistanceKm,
		Verdict:    result.Verdict(),
		CacheEmpty: result.CacheEmpty,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal result broadcast: %w", err)
	}
	return s.publisher.PublishBroadcast(ctx, data)
}

// HandleProgress relays batch progress to broadcast subscribers.
func (s *NotifyService) HandleProgress(ctx context.Context, progress *domain.BatchProgress) error {
	msg := progressBroadcast{
		Type:      "progress",
		Processed: progress.Processed,
		Total:     progress.Total,
		LastPair:  progress.LastPair,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal progress broadcast: %w", err)
	}
	return s.publisher.PublishBroadcast(ctx, data)
}
