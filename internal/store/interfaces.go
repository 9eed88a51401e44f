package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"promptchart/internal/models"
)

// --- Provider Status ---

type ProviderStatus int

const (
	ProviderStatusUnknown  ProviderStatus = iota // Default zero value
	ProviderStatusActive                         // Provider is operational
	ProviderStatusInactive                       // Provider is temporarily unavailable (e.g., network, rate limit)
	ProviderStatusDisabled                       // Provider is not configured or explicitly disabled
)

func (s ProviderStatus) String() string {
	switch s {
	case ProviderStatusActive:
		return "active"
	case ProviderStatusInactive:
		return "inactive"
	case ProviderStatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// --- Job Client ---

type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueAnalysis(ctx context.Context, analysisID uuid.UUID, prompt, variant string) (*asynq.TaskInfo, error)
	Close() error
}

// --- Analysis Store ---

type AnalysisStore interface {
	CreateAnalysis(ctx context.Context, a *models.Analysis) error
	UpdateAnalysis(ctx context.Context, a *models.Analysis) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]*models.Analysis, error)

	Ping(ctx context.Context) error
}

// --- Cost Tracking Store ---

type CostTrackingStore interface {
	RecordUsage(ctx context.Context, log *models.AIUsageLog) error
	ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error)
	GetUsageSummary(ctx context.Context) (*models.UsageSummary, error)
}

// PrimaryStore is everything the relational store provides.
type PrimaryStore interface {
	AnalysisStore
	CostTrackingStore
	Close() error
}
