package primary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"promptchart/internal/models"
	"promptchart/internal/store"
	"promptchart/pkg/category"
)

const analysisColumns = `id, prompt, variant, source, status, categories,
	error_kind, error, duration_ms, task_id, created_at, updated_at`

// CreateAnalysis inserts a new analysis. A zero ID is replaced with a fresh
// one; an ID that already exists yields store.ErrDuplicate.
func (s *StoreImpl) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	cats, err := encodeCategories(a.Categories)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = s.db.ExecContext(ctx, query,
		a.ID,
		a.Prompt,
		a.Variant,
		a.Source,
		a.Status,
		cats,
		a.ErrorKind,
		a.Error,
		a.DurationMs,
		a.TaskID,
		a.CreatedAt.UTC(),
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("analysis %s already exists: %w", a.ID, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// UpdateAnalysis stores the outcome fields of an existing analysis.
func (s *StoreImpl) UpdateAnalysis(ctx context.Context, a *models.Analysis) error {
	cats, err := encodeCategories(a.Categories)
	if err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE analyses
		SET source = $1, status = $2, categories = $3, error_kind = $4,
		    error = $5, duration_ms = $6, task_id = COALESCE($7, task_id), updated_at = $8
		WHERE id = $9`
	res, err := s.db.ExecContext(ctx, query,
		a.Source,
		a.Status,
		cats,
		a.ErrorKind,
		a.Error,
		a.DurationMs,
		a.TaskID,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis %s: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update analysis %s: %w", a.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("analysis %s: %w", a.ID, store.ErrNotFound)
	}
	return nil
}

// GetAnalysis returns one analysis or store.ErrNotFound.
func (s *StoreImpl) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`
	a, err := scanAnalysis(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("analysis %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return a, nil
}

// ListAnalyses returns analyses newest first.
func (s *StoreImpl) ListAnalyses(ctx context.Context, limit, offset int) ([]*models.Analysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	list, err := collectRows(rows, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to read analyses: %w", err)
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var (
		a    models.Analysis
		cats string
	)
	err := row.Scan(
		&a.ID,
		&a.Prompt,
		&a.Variant,
		&a.Source,
		&a.Status,
		&cats,
		&a.ErrorKind,
		&a.Error,
		&a.DurationMs,
		&a.TaskID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cats), &a.Categories); err != nil {
		return nil, fmt.Errorf("decode categories of analysis %s: %w", a.ID, err)
	}
	return &a, nil
}

func encodeCategories(cats []category.Category) (string, error) {
	if cats == nil {
		cats = []category.Category{}
	}
	b, err := json.Marshal(cats)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(b), nil
}
