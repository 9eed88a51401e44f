package services

import (
	"context"
	"fmt"

	"promptchart/internal/models"
	"promptchart/internal/store"
)

// CostService provides methods for accessing AI usage cost data.
type CostService struct {
	store store.CostTrackingStore
}

// NewCostService creates a new CostService. A nil store disables it.
func NewCostService(store store.CostTrackingStore) *CostService {
	return &CostService{store: store}
}

// ListUsage retrieves a paginated list of AI usage logs.
func (s *CostService) ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	logs, err := s.store.ListUsage(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs from store: %w", err)
	}
	return logs, nil
}

// GetSummary retrieves the total cost and token usage summary.
func (s *CostService) GetSummary(ctx context.Context) (*models.UsageSummary, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	sum, err := s.store.GetUsageSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage summary from store: %w", err)
	}
	return sum, nil
}
