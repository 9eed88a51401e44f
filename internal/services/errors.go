package services

import "errors"

var (
	// ErrHistoryDisabled is returned by history and cost operations when no
	// database is configured.
	ErrHistoryDisabled = errors.New("analysis history is disabled (database.dsn not set)")
	// ErrQueueDisabled is returned when queued analysis needs Redis or a database
	// that is not configured.
	ErrQueueDisabled = errors.New("queued analysis is disabled (redis.address and database.dsn required)")
	// ErrUnknownVariant is returned for a variant name the service does not know.
	ErrUnknownVariant = errors.New("unknown variant")
)
