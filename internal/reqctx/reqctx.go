// Package reqctx carries per-request identifiers through a context.
package reqctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	keyRequestID  contextKey = "request_id"
	keyAnalysisID contextKey = "analysis_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// RequestID extracts the request ID, if any.
func RequestID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyRequestID).(uuid.UUID)
	return id, ok
}

// WithAnalysisID adds the analysis being produced to the context.
func WithAnalysisID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyAnalysisID, id)
}

// AnalysisID extracts the analysis ID, if any.
func AnalysisID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyAnalysisID).(uuid.UUID)
	return id, ok
}

// Fields returns the identifiers present in ctx as log fields.
func Fields(ctx context.Context) map[string]any {
	f := map[string]any{}
	if id, ok := RequestID(ctx); ok {
		f["request_id"] = id.String()
	}
	if id, ok := AnalysisID(ctx); ok {
		f["analysis_id"] = id.String()
	}
	return f
}
