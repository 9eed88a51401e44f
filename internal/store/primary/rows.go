package primary

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// collectRows scans every row with fn and closes rows. It is the database/sql
// counterpart of pgx.CollectRows.
func collectRows[T any](rows *sql.Rows, fn func(row rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := fn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// isUniqueViolation reports a primary key or unique constraint conflict from
// either driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
