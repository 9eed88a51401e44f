package primary

import (
	"context"
	"fmt"
)

const analysesDDL = `
CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	prompt      TEXT NOT NULL,
	variant     TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	categories  TEXT NOT NULL DEFAULT '[]',
	error_kind  TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	task_id     TEXT,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`

const analysesIndexDDL = `CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at)`

// ai_usage_logs only differs in how the id is generated.
const usageLogsDDL = `
CREATE TABLE IF NOT EXISTS ai_usage_logs (
	id            %s,
	timestamp     TIMESTAMP NOT NULL,
	provider_name TEXT NOT NULL,
	service_type  TEXT NOT NULL,
	model_name    TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	cost          DOUBLE PRECISION NOT NULL DEFAULT 0,
	request_id    TEXT,
	analysis_id   TEXT
)`

func (s *StoreImpl) idColumn() string {
	if s.driver == DriverSQLite {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "BIGSERIAL PRIMARY KEY"
}

// Migrate creates the tables used by the service.
func (s *StoreImpl) Migrate(ctx context.Context) error {
	stmts := []string{
		analysesDDL,
		analysesIndexDDL,
		fmt.Sprintf(usageLogsDDL, s.idColumn()),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
