package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/ports"
)

// BatchService evaluates a list of candidate pairs across a bounded worker
// pool. Individual evaluation failures land in a distinct failed bucket and
// never abort the run or masquerade as blocked verdicts.
type BatchService struct {
	visibility *VisibilityService
	publisher  ports.EventPublisher
	workers    int
}

// NewBatchService creates a new BatchService. workers <= 0 falls back to a
// single worker.
func NewBatchService(visibility *VisibilityService, publisher ports.EventPublisher, workers int) *BatchService {
	if workers <= 0 {
		workers = 1
	}
	return &BatchService{visibility: visibility, publisher: publisher, workers: workers}
}

// Run evaluates every pair and returns the aggregate report. Completion order
// is arbitrary; tallies are exact regardless. Progress events go out after
// each completed pair, best-effort.
func (s *BatchService) Run(ctx context.Context, pairs []domain.PeakPair) (*domain.BatchReport, error) {
	started := time.Now()
	report := &domain.BatchReport{
		TotalPairs: len(pairs),
		StartedAt:  started.UTC(),
	}
	if len(pairs) == 0 {
		return report, nil
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan domain.PeakPair)
	)

	processed := 0
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobs {
				result, err := s.visibility.EvaluatePeaks(ctx, pair.A, pair.B)

				mu.Lock()
				processed++
				switch {
				case err != nil:
					report.Failed++
					slog.Warn("pair evaluation failed", "pair", pair.Label(), "error", err)
				case result.Clear:
					report.Clear++
				default:
					report.Blocked++
				}
				progress := domain.BatchProgress{
					Processed: processed,
					Total:     report.TotalPairs,
					Clear:     report.Clear,
					Blocked:   report.Blocked,
					Failed:    report.Failed,
					LastPair:  pair.Label(),
				}
				mu.Unlock()

				if s.publisher != nil {
					_ = s.publisher.PublishProgress(ctx, &progress)
				}
			}
		}()
	}

	for _, pair := range pairs {
		select {
		case jobs <- pair:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			report.Duration = time.Since(started)
			return report, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	report.Duration = time.Since(started)
	return report, nil
}
