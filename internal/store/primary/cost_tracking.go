package primary

import (
	"context"
	"fmt"
	"time"

	"promptchart/internal/models"
)

// RecordUsage inserts a new AI usage log entry.
func (s *StoreImpl) RecordUsage(ctx context.Context, log *models.AIUsageLog) error {
	query := `
		INSERT INTO ai_usage_logs (
			timestamp, provider_name, service_type, model_name,
			input_tokens, output_tokens, cost,
			request_id, analysis_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	log.Timestamp = log.Timestamp.UTC()
	err := s.db.QueryRowContext(ctx, query,
		log.Timestamp,
		log.ProviderName,
		log.ServiceType,
		log.ModelName,
		log.InputTokens,
		log.OutputTokens,
		log.Cost,
		log.RequestID,
		log.AnalysisID,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to insert ai_usage_log: %w", err)
	}
	return nil
}

// ListUsage returns AI usage logs, newest first.
func (s *StoreImpl) ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error) {
	query := `
		SELECT id, timestamp, provider_name, service_type, model_name,
		       input_tokens, output_tokens, cost, request_id, analysis_id
		FROM ai_usage_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ai_usage_logs: %w", err)
	}

	logs, err := collectRows(rows, func(row rowScanner) (*models.AIUsageLog, error) {
		var log models.AIUsageLog
		err := row.Scan(
			&log.ID,
			&log.Timestamp,
			&log.ProviderName,
			&log.ServiceType,
			&log.ModelName,
			&log.InputTokens,
			&log.OutputTokens,
			&log.Cost,
			&log.RequestID,
			&log.AnalysisID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ai_usage_log: %w", err)
		}
		return &log, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ai_usage_logs: %w", err)
	}
	return logs, nil
}

// GetUsageSummary returns the total cost and token usage.
func (s *StoreImpl) GetUsageSummary(ctx context.Context) (*models.UsageSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(cost), 0),
			CAST(COALESCE(SUM(input_tokens), 0) AS BIGINT),
			CAST(COALESCE(SUM(output_tokens), 0) AS BIGINT),
			COUNT(*)
		FROM ai_usage_logs
	`
	var sum models.UsageSummary
	err := s.db.QueryRowContext(ctx, query).Scan(&sum.TotalCost, &sum.TotalInputTokens, &sum.TotalOutputTokens, &sum.Calls)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ai_usage_logs: %w", err)
	}
	return &sum, nil
}
