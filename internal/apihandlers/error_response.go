package apihandlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"promptchart/internal/reqctx"
	"promptchart/internal/services"
	"promptchart/internal/store"
	"promptchart/pkg/analyze"
)

// APIError is the error body every endpoint returns.
// Example: { "error": "Failed to analyze prompt", "details": "429 rate limited" }
type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSONError sends an error response and stops the handler chain.
func JSONError(ctx *gin.Context, status int, msg, details string) {
	ctx.AbortWithStatusJSON(status, APIError{Error: msg, Details: details})
}

// Convenience wrappers
func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, msg, "")
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, msg, "")
}

func Unavailable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusServiceUnavailable, msg, "")
}

func Internal(ctx *gin.Context) {
	JSONError(ctx, http.StatusInternalServerError, "Internal server error", "")
}

// writeError maps service and pipeline errors to a status and message.
func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, analyze.ErrInvalidInput):
		BadRequest(ctx, "Prompt is required")
	case errors.Is(err, analyze.ErrNoExtractableData):
		BadRequest(ctx, "Could not extract valid data from the prompt")
	case errors.Is(err, analyze.ErrUpstreamFailure):
		details := ""
		var runErr *analyze.Error
		if errors.As(err, &runErr) {
			details = runErr.Details()
		}
		JSONError(ctx, http.StatusInternalServerError, "Failed to analyze prompt", details)
	case errors.Is(err, services.ErrUnknownVariant):
		BadRequest(ctx, err.Error())
	case errors.Is(err, store.ErrNotFound):
		NotFound(ctx, "Analysis not found")
	case errors.Is(err, services.ErrHistoryDisabled):
		Unavailable(ctx, "Analysis history is not enabled")
	case errors.Is(err, services.ErrQueueDisabled):
		Unavailable(ctx, "Queued analysis is not enabled")
	default:
		log.WithFields(log.Fields(reqctx.Fields(ctx.Request.Context()))).WithError(err).Error("Unhandled API error")
		Internal(ctx)
	}
}
