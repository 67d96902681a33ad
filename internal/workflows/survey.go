package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// SurveyInput is the input for the survey workflow.
type SurveyInput struct {
	MinElevationM float64
	MinKm         float64
	MaxKm         float64
}

// SurveyWorkflow orchestrates a full visibility survey: check elevation
// coverage, find candidate pairs, evaluate them, and publish the report.
// If publishing fails, results persisted during this run are deleted
// (saga compensation).
func SurveyWorkflow(ctx workflow.Context, input SurveyInput) (*domain.BatchReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting survey workflow",
		"minElevationM", input.MinElevationM,
		"band", []float64{input.MinKm, input.MaxKm})

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Results persisted at or after this instant belong to this run.
	cutoff := workflow.Now(ctx).UTC().Format(time.RFC3339)

	// Step 1: Check elevation coverage
	var cacheEmpty bool
	if err := workflow.ExecuteActivity(ctx, "CheckElevationCoverage").Get(ctx, &cacheEmpty); err != nil {
		return nil, err
	}
	if cacheEmpty {
		logger.Warn("Elevation source holds no data; terrain will read as sea level")
	}

	// Step 2: Find candidate pairs
	var pairCount int
	if err := workflow.ExecuteActivity(ctx, "CountCandidatePairs", input).Get(ctx, &pairCount); err != nil {
		return nil, err
	}
	if pairCount == 0 {
		logger.Info("No candidate pairs in band; nothing to evaluate")
		return &domain.BatchReport{}, nil
	}
	logger.Info("Candidate pairs found", "count", pairCount)

	// Step 3: Evaluate all pairs
	var report domain.BatchReport
	if err := workflow.ExecuteActivity(ctx, "EvaluateCandidatePairs", input).Get(ctx, &report); err != nil {
		return nil, err
	}

	// Step 4: Publish the report
	if err := workflow.ExecuteActivity(ctx, "PublishSurveyReport", report).Get(ctx, nil); err != nil {
		logger.Warn("report publish failed, rolling back persisted results", "error", err)
		// Compensate: delete results persisted during this run
		_ = workflow.ExecuteActivity(ctx, "RollbackSurveyResults", cutoff).Get(ctx, nil)
		return nil, err
	}

	logger.Info("Survey complete",
		"clear", report.Clear, "blocked", report.Blocked, "failed", report.Failed)
	return &report, nil
}
