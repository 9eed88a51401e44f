package apihandlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"promptchart/internal/app"
	"promptchart/internal/models"
	"promptchart/internal/services"
	"promptchart/internal/store"
	"promptchart/pkg/category"
)

// Analyzer runs and queues analyses.
type Analyzer interface {
	Analyze(ctx context.Context, req services.AnalyzeRequest) (*services.AnalyzeResult, error)
	Enqueue(ctx context.Context, prompt, variant string) (*models.Analysis, error)
}

// HistoryReader reads recorded analyses.
type HistoryReader interface {
	List(ctx context.Context, limit, offset int) ([]*models.Analysis, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
}

// ProviderInfo describes the completion provider for the health check.
type ProviderInfo interface {
	Name() string
	Status() store.ProviderStatus
}

type APIHandler struct {
	Analyzer Analyzer
	History  HistoryReader
	Provider ProviderInfo
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{
		Analyzer: a.AnalysisService,
		History:  a.HistoryService,
		Provider: a.CompletionService,
	}
}

// AnalyzeRequest is the JSON body of the analyze endpoints.
type AnalyzeRequest struct {
	Prompt  string `json:"prompt"`
	Variant string `json:"variant,omitempty"`
}

// EnqueueResponse is returned by the async analyze endpoint.
type EnqueueResponse struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	TaskID     string    `json:"task_id"`
}

// parseAnalyzeRequest binds the body. An empty body is an empty prompt so the
// pipeline reports it as missing input.
func parseAnalyzeRequest(c *gin.Context) (AnalyzeRequest, error) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

// AnalyzeHandler runs the pipeline synchronously and returns the category list.
func (h *APIHandler) AnalyzeHandler(c *gin.Context) {
	req, err := parseAnalyzeRequest(c)
	if err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	res, err := h.Analyzer.Analyze(c.Request.Context(), services.AnalyzeRequest{Prompt: req.Prompt, Variant: req.Variant})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("X-Analysis-ID", res.AnalysisID.String())
	c.Header("X-Analysis-Source", string(res.Source))
	cats := res.Categories
	if cats == nil {
		cats = []category.Category{}
	}
	c.JSON(http.StatusOK, cats)
}

// EnqueueHandler queues the prompt and returns immediately.
func (h *APIHandler) EnqueueHandler(c *gin.Context) {
	req, err := parseAnalyzeRequest(c)
	if err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	a, err := h.Analyzer.Enqueue(c.Request.Context(), req.Prompt, req.Variant)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := EnqueueResponse{AnalysisID: a.ID}
	if a.TaskID != nil {
		resp.TaskID = *a.TaskID
	}
	c.JSON(http.StatusAccepted, resp)
}

// ListHistoryHandler returns recorded analyses, newest first.
func (h *APIHandler) ListHistoryHandler(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	items, err := h.History.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []*models.Analysis{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "limit": limit, "offset": offset})
}

// GetHistoryHandler returns one analysis.
func (h *APIHandler) GetHistoryHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "Invalid analysis ID")
		return
	}

	a, err := h.History.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

// HealthHandler reports liveness and the provider state.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.Provider != nil {
		resp["provider"] = h.Provider.Name()
		resp["provider_status"] = h.Provider.Status().String()
	}
	c.JSON(http.StatusOK, resp)
}

// parsePagination reads limit (default 20, max 100) and offset (default 0).
func parsePagination(c *gin.Context) (int, int, error) {
	limit := 20
	offset := 0

	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		} else {
			return 0, 0, fmt.Errorf("invalid limit: %s", l)
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		} else {
			return 0, 0, fmt.Errorf("invalid offset: %s", o)
		}
	}
	if limit > 100 {
		limit = 100
	}
	return limit, offset, nil
}
