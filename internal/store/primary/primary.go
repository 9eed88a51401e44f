package primary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
	log "github.com/sirupsen/logrus"

	"promptchart/internal/store"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// StoreImpl implements store.PrimaryStore on database/sql.
type StoreImpl struct {
	db     *sql.DB
	driver string
}

var _ store.PrimaryStore = (*StoreImpl)(nil)

// NewPrimaryStore opens the database, checks connectivity and creates the
// schema if it is missing.
func NewPrimaryStore(ctx context.Context, driver, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	if driver == DriverSQLite {
		// every connection to an in-memory database is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	}

	s, err := New(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open handle. The schema is created when missing.
func New(ctx context.Context, db *sql.DB, driver string) (*StoreImpl, error) {
	s := &StoreImpl{db: db, driver: driver}
	if err := s.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	log.WithField("driver", driver).Debug("Primary store ready")
	return s, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *StoreImpl) Close() error {
	return s.db.Close()
}
