package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/core/ports"
	"github.com/aritzolea/peaksight/internal/core/usecases"
)

// SurveyActivities holds the activity implementations for the survey workflow.
type SurveyActivities struct {
	Pairs     *usecases.PairService
	Batch     *usecases.BatchService
	Results   ports.ResultRepository
	Source    ports.ElevationSource
	Publisher ports.EventPublisher
}

// CheckElevationCoverage reports whether the elevation source holds no data.
func (a *SurveyActivities) CheckElevationCoverage(ctx context.Context) (bool, error) {
	if a.Source == nil {
		return true, nil
	}
	return a.Source.Empty(), nil
}

// CountCandidatePairs runs the pair search and returns how many pairs fall
// inside the band.
func (a *SurveyActivities) CountCandidatePairs(ctx context.Context, input SurveyInput) (int, error) {
	pairs, err := a.Pairs.FindCandidates(ctx, input.MinElevationM, input.MinKm, input.MaxKm)
	if err != nil {
		return 0, fmt.Errorf("find candidate pairs: %w", err)
	}
	return len(pairs), nil
}

// EvaluateCandidatePairs evaluates every pair in the band and returns the
// batch report. The pair search is repeated here rather than shipping the
// full pair list through workflow history.
func (a *SurveyActivities) EvaluateCandidatePairs(ctx context.Context, input SurveyInput) (*domain.BatchReport, error) {
	pairs, err := a.Pairs.FindCandidates(ctx, input.MinElevationM, input.MinKm, input.MaxKm)
	if err != nil {
		return nil, fmt.Errorf("find candidate pairs: %w", err)
	}
	report, err := a.Batch.Run(ctx, pairs)
	if err != nil {
		return report, fmt.Errorf("evaluate pairs: %w", err)
	}
	return report, nil
}

// PublishSurveyReport broadcasts the completed report to subscribers.
func (a *SurveyActivities) PublishSurveyReport(ctx context.Context, report domain.BatchReport) error {
	if a.Publisher == nil {
		log.Printf("SURVEY (no publisher) → clear=%d blocked=%d failed=%d",
			report.Clear, report.Blocked, report.Failed)
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return a.Publisher.PublishBroadcast(ctx, data)
}

// RollbackSurveyResults deletes results persisted at or after the cutoff
// (saga compensation / rollback).
func (a *SurveyActivities) RollbackSurveyResults(ctx context.Context, cutoff string) error {
	if err := a.Results.DeleteSince(ctx, cutoff); err != nil {
		return fmt.Errorf("delete results since %s: %w", cutoff, err)
	}
	log.Printf("Results since %s deleted (saga compensation)", cutoff)
	return nil
}
