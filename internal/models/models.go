package models

import (
	"time"

	"github.com/google/uuid"

	"promptchart/pkg/category"
)

// Analysis is one recorded pipeline run.
type Analysis struct {
	ID         uuid.UUID           `db:"id" json:"id"`
	Prompt     string              `db:"prompt" json:"prompt"`
	Variant    string              `db:"variant" json:"variant"`
	Source     string              `db:"source" json:"source,omitempty"` // "pattern" or "model"
	Status     string              `db:"status" json:"status"`
	Categories []category.Category `db:"categories" json:"categories"`
	ErrorKind  string              `db:"error_kind" json:"error_kind,omitempty"`
	Error      string              `db:"error" json:"error,omitempty"`
	DurationMs int64               `db:"duration_ms" json:"duration_ms"`
	TaskID     *string             `db:"task_id" json:"task_id,omitempty"` // set for queued runs
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updated_at"`
}

// AIUsageLog represents a record of AI API usage for cost tracking.
type AIUsageLog struct {
	ID           int64      `db:"id" json:"id"`
	Timestamp    time.Time  `db:"timestamp" json:"timestamp"`
	ProviderName string     `db:"provider_name" json:"provider_name"`
	ServiceType  string     `db:"service_type" json:"service_type"` // e.g. "analysis"
	ModelName    string     `db:"model_name" json:"model_name"`
	InputTokens  int        `db:"input_tokens" json:"input_tokens"`
	OutputTokens int        `db:"output_tokens" json:"output_tokens"`
	Cost         float64    `db:"cost" json:"cost"`
	RequestID    *uuid.UUID `db:"request_id" json:"request_id,omitempty"`   // nullable
	AnalysisID   *uuid.UUID `db:"analysis_id" json:"analysis_id,omitempty"` // nullable
}

// UsageSummary aggregates all usage logs.
type UsageSummary struct {
	TotalCost         float64 `json:"total_cost"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	Calls             int64   `json:"calls"`
}
