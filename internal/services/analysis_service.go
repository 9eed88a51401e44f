package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"promptchart/internal/models"
	"promptchart/internal/reqctx"
	"promptchart/internal/store"
	"promptchart/pkg/analyze"
	"promptchart/pkg/extract"
	"promptchart/pkg/normalize"
)

// AnalysisConfig holds the model and normalizer settings shared by every
// variant.
type AnalysisConfig struct {
	DefaultVariant extract.Variant
	// Instruction overrides the built-in instruction of DefaultVariant only.
	Instruction   string
	Temperature   float32
	JSONOutput    bool
	Timeout       time.Duration
	MaxInputChars int
	Tolerance     float64
}

// AnalyzeRequest is one prompt to analyze.
type AnalyzeRequest struct {
	Prompt  string
	Variant string // empty selects the default variant
	// AnalysisID continues a previously recorded analysis (queued runs).
	AnalysisID uuid.UUID
	// Retryable is set when a transient failure will be run again, so it is
	// recorded as retrying instead of failed.
	Retryable bool
}

// AnalyzeResult is a successful analysis.
type AnalyzeResult struct {
	AnalysisID uuid.UUID
	Variant    extract.Variant
	*analyze.Result
}

// AnalysisService runs the analysis pipeline and records its outcome.
type AnalysisService struct {
	provider       CompletionService
	pipelines      map[extract.Variant]*analyze.Pipeline
	defaultVariant extract.Variant
	store          store.AnalysisStore
	jobs           store.JobClient
}

// NewAnalysisService builds one pipeline per variant. st and jobs may be nil.
func NewAnalysisService(provider CompletionService, cfg AnalysisConfig, st store.AnalysisStore, jobs store.JobClient) (*AnalysisService, error) {
	if provider == nil {
		return nil, errors.New("analysis service: completion provider is required")
	}
	if cfg.DefaultVariant == "" {
		cfg.DefaultVariant = extract.VariantGeneral
	}

	s := &AnalysisService{
		provider:       provider,
		pipelines:      make(map[extract.Variant]*analyze.Pipeline),
		defaultVariant: cfg.DefaultVariant,
		store:          st,
		jobs:           jobs,
	}

	for _, v := range []extract.Variant{extract.VariantGeneral, extract.VariantAgeDemographics} {
		temp := cfg.Temperature
		mc := extract.ModelConfig{
			Variant:       v,
			Temperature:   &temp,
			JSONOutput:    cfg.JSONOutput,
			Timeout:       cfg.Timeout,
			MaxInputChars: cfg.MaxInputChars,
		}
		if v == cfg.DefaultVariant {
			mc.Instruction = cfg.Instruction
		}
		model, err := extract.NewModelExtractor(provider, mc)
		if err != nil {
			return nil, fmt.Errorf("build %s extractor: %w", v, err)
		}
		s.pipelines[v] = analyze.New(nil, model, analyze.WithNormalizer(&normalize.Normalizer{
			Tolerance:           cfg.Tolerance,
			SortByLeadingNumber: v.SortsByLeadingNumber(),
		}))
	}
	return s, nil
}

// Provider returns the completion provider in use.
func (s *AnalysisService) Provider() CompletionService {
	return s.provider
}

// HistoryEnabled reports whether analyses are recorded.
func (s *AnalysisService) HistoryEnabled() bool {
	return s.store != nil
}

func (s *AnalysisService) variant(name string) (extract.Variant, error) {
	if name == "" {
		return s.defaultVariant, nil
	}
	v, err := extract.ParseVariant(name)
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Analyze runs the pipeline for req. Pipeline failures are returned as
// *analyze.Error. The outcome is recorded when history is enabled; recording
// problems are logged and never fail the call.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	variant, err := s.variant(req.Variant)
	if err != nil {
		return nil, err
	}

	id := req.AnalysisID
	continuing := id != uuid.Nil
	if !continuing {
		id = uuid.New()
	}
	ctx = reqctx.WithAnalysisID(ctx, id)
	logger := log.WithFields(log.Fields(reqctx.Fields(ctx))).WithField("variant", variant)

	start := time.Now()
	res, runErr := s.pipelines[variant].Run(ctx, req.Prompt)
	elapsed := time.Since(start)

	if runErr != nil {
		logger.WithError(runErr).Info("Analysis failed")
	} else {
		logger.WithFields(log.Fields{
			"source":     res.Source,
			"categories": len(res.Categories),
			"elapsed_ms": elapsed.Milliseconds(),
		}).Info("Analysis complete")
	}

	if !errors.Is(runErr, analyze.ErrInvalidInput) {
		a := buildAnalysis(id, req.Prompt, variant, res, runErr, elapsed)
		if runErr != nil && req.Retryable && !IsPermanent(runErr) {
			a.Status = models.AnalysisStatusRetrying
		}
		s.record(ctx, continuing, a)
	}

	if runErr != nil {
		return nil, runErr
	}
	return &AnalyzeResult{AnalysisID: id, Variant: variant, Result: res}, nil
}

func buildAnalysis(id uuid.UUID, prompt string, variant extract.Variant, res *analyze.Result, runErr error, elapsed time.Duration) *models.Analysis {
	a := &models.Analysis{
		ID:         id,
		Prompt:     prompt,
		Variant:    string(variant),
		DurationMs: elapsed.Milliseconds(),
	}
	if runErr != nil {
		a.Status = models.AnalysisStatusFailed
		a.ErrorKind = ErrorKind(runErr)
		a.Error = runErr.Error()
		return a
	}
	a.Status = models.AnalysisStatusDone
	a.Source = string(res.Source)
	a.Categories = res.Categories
	return a
}

func (s *AnalysisService) record(ctx context.Context, continuing bool, a *models.Analysis) {
	if s.store == nil {
		return
	}
	var err error
	if continuing {
		err = s.store.UpdateAnalysis(ctx, a)
		if errors.Is(err, store.ErrNotFound) {
			err = s.store.CreateAnalysis(ctx, a)
		}
	} else {
		err = s.store.CreateAnalysis(ctx, a)
	}
	if err != nil {
		log.WithFields(log.Fields(reqctx.Fields(ctx))).Errorf("Failed to record analysis: %v", err)
	}
}

// ErrorKind labels err for storage.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, analyze.ErrInvalidInput):
		return models.ErrorKindInvalidInput
	case errors.Is(err, analyze.ErrNoExtractableData):
		return models.ErrorKindNoData
	case errors.Is(err, analyze.ErrUpstreamFailure):
		return models.ErrorKindUpstream
	default:
		return models.ErrorKindInternal
	}
}

// IsPermanent reports whether running the same request again cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, analyze.ErrInvalidInput) ||
		errors.Is(err, analyze.ErrNoExtractableData) ||
		errors.Is(err, ErrUnknownVariant)
}

// Enqueue records a pending analysis and queues it for a worker.
func (s *AnalysisService) Enqueue(ctx context.Context, prompt, variantName string) (*models.Analysis, error) {
	if s.store == nil || s.jobs == nil {
		return nil, ErrQueueDisabled
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, &analyze.Error{Kind: analyze.ErrInvalidInput}
	}
	variant, err := s.variant(variantName)
	if err != nil {
		return nil, err
	}

	a := &models.Analysis{
		ID:      uuid.New(),
		Prompt:  prompt,
		Variant: string(variant),
		Status:  models.AnalysisStatusPending,
	}
	if err := s.store.CreateAnalysis(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to record pending analysis: %w", err)
	}

	info, err := s.jobs.EnqueueAnalysis(ctx, a.ID, prompt, string(variant))
	if err != nil {
		a.Status = models.AnalysisStatusFailed
		a.ErrorKind = models.ErrorKindInternal
		a.Error = err.Error()
		if uerr := s.store.UpdateAnalysis(ctx, a); uerr != nil {
			log.Errorf("Failed to mark analysis %s as failed: %v", a.ID, uerr)
		}
		return nil, fmt.Errorf("failed to enqueue analysis: %w", err)
	}

	a.TaskID = &info.ID
	if err := s.store.UpdateAnalysis(ctx, a); err != nil {
		log.Errorf("Failed to store task id for analysis %s: %v", a.ID, err)
	}
	return a, nil
}
