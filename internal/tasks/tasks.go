package tasks

import "github.com/google/uuid"

// Defines constants for task types used in Asynq.

const (
	// TypeAnalysisRun runs the analysis pipeline for a queued prompt.
	TypeAnalysisRun = "analysis:run"

	// QueueAnalysis is the queue analysis tasks are placed on.
	QueueAnalysis = "analysis"

	// MaxRetry bounds redelivery of upstream failures.
	MaxRetry = 3
)

// AnalysisPayload is the JSON body of a TypeAnalysisRun task.
type AnalysisPayload struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	Prompt     string    `json:"prompt"`
	Variant    string    `json:"variant,omitempty"`
}
