package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"promptchart/internal/models"
	"promptchart/internal/store"
)

// HistoryService reads recorded analyses.
type HistoryService struct {
	store store.AnalysisStore
}

// NewHistoryService creates a HistoryService. A nil store disables it.
func NewHistoryService(s store.AnalysisStore) *HistoryService {
	return &HistoryService{store: s}
}

// List returns analyses newest first.
func (s *HistoryService) List(ctx context.Context, limit, offset int) ([]*models.Analysis, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	list, err := s.store.ListAnalyses(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return list, nil
}

// Get returns one analysis; store.ErrNotFound is preserved in the chain.
func (s *HistoryService) Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	a, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return a, nil
}
