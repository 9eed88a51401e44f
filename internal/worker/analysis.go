// Package worker holds the asynq handlers for queued analyses.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"promptchart/internal/services"
	"promptchart/internal/tasks"
)

// Analyzer runs one analysis; *services.AnalysisService satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req services.AnalyzeRequest) (*services.AnalyzeResult, error)
}

// AnalysisDeps holds dependencies for the analysis handler.
type AnalysisDeps struct {
	Analyzer Analyzer
	// RetriesLeft reports whether asynq will redeliver the task after a
	// failure. Defaults to reading the task's retry metadata.
	RetriesLeft func(ctx context.Context) bool
}

func asynqRetriesLeft(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	return ok && retried < maxRetry
}

// RegisterHandlers registers every task handler on mux.
func RegisterHandlers(mux *asynq.ServeMux, deps AnalysisDeps) {
	log.Infof("Registering analysis handler (%s)", tasks.TypeAnalysisRun)
	mux.HandleFunc(tasks.TypeAnalysisRun, HandleAnalysisRun(deps))
}

// HandleAnalysisRun returns the handler for TypeAnalysisRun. Input and
// no-data failures are final; anything else is returned so asynq retries it.
func HandleAnalysisRun(deps AnalysisDeps) func(context.Context, *asynq.Task) error {
	retriesLeft := deps.RetriesLeft
	if retriesLeft == nil {
		retriesLeft = asynqRetriesLeft
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var p tasks.AnalysisPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
		}

		logger := log.WithFields(log.Fields{"analysis_id": p.AnalysisID, "task_type": t.Type()})
		logger.Info("Processing analysis task")

		res, err := deps.Analyzer.Analyze(ctx, services.AnalyzeRequest{
			Prompt:     p.Prompt,
			Variant:    p.Variant,
			AnalysisID: p.AnalysisID,
			Retryable:  retriesLeft(ctx),
		})
		if err != nil {
			if services.IsPermanent(err) {
				logger.WithError(err).Warn("Analysis failed permanently, not retrying")
				return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
			}
			logger.WithError(err).Error("Analysis failed, will retry")
			return err
		}

		logger.WithField("categories", len(res.Categories)).Info("Analysis task complete")
		return nil
	}
}
