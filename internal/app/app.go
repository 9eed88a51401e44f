package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"promptchart/internal/config"
	"promptchart/internal/costtracker"
	"promptchart/internal/inputprocessor"
	"promptchart/internal/services"
	"promptchart/internal/store"
	"promptchart/internal/store/primary"
	"promptchart/pkg/extract"
)

type App struct {
	Config         *config.Config
	InputProcessor inputprocessor.Processor

	// PrimaryStore and JobClient stay nil when their backends are not configured.
	PrimaryStore store.PrimaryStore
	JobClient    store.JobClient
	CostTracker  costtracker.CostTracker

	CompletionService services.CompletionService

	// --- Initialized Services ---
	AnalysisService *services.AnalysisService
	HistoryService  *services.HistoryService
	CostService     *services.CostService
}

func NewApp(cfg *config.Config, inputProc inputprocessor.Processor) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg, InputProcessor: inputProc}

	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initCompletionService(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}

	log.Debug("Application initialization complete.")
	return app, nil
}

// --- Private Helper Methods ---

func (a *App) initPrimaryStore(ctx context.Context) error {
	if !a.Config.HistoryEnabled() {
		log.Debug("database.dsn not set, history and cost tracking disabled")
		a.CostTracker = costtracker.New(nil, a.Config.Pricing)
		return nil
	}
	ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.Driver, a.Config.Database.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	a.PrimaryStore = ps
	a.CostTracker = costtracker.New(ps, a.Config.Pricing)
	return nil
}

func (a *App) initJobClient() error {
	if !a.Config.QueueEnabled() {
		return nil
	}
	jc, err := store.NewAsynqJobClient(store.RedisOptions{
		Address:  a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

func (a *App) initCompletionService(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Model.Provider {
	case "openai":
		a.CompletionService = services.NewOpenAIProvider(cfg.Model.OpenaiApiKey, cfg.Model.BaseURL, cfg.Model.Name, a.CostTracker)
	case "gemini":
		p, err := services.NewGeminiProvider(ctx, cfg.Model.GoogleApiKey, cfg.Model.Name, a.CostTracker)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini completion provider: %w", err)
		}
		a.CompletionService = p
	default:
		return fmt.Errorf("unknown or unsupported model provider configured: %s", cfg.Model.Provider)
	}
	return nil
}

func (a *App) initServices() error {
	cfg := a.Config

	variant, err := extract.ParseVariant(cfg.Model.Variant)
	if err != nil {
		return fmt.Errorf("init analysis service: %w", err)
	}
	instruction, err := config.LoadPromptContent(cfg.Model.Prompt)
	if err != nil {
		return fmt.Errorf("load instruction override: %w", err)
	}

	// Interfaces are assigned only when backed, so a missing store is a nil
	// interface rather than a typed nil.
	var analyses store.AnalysisStore
	var costs store.CostTrackingStore
	if a.PrimaryStore != nil {
		analyses = a.PrimaryStore
		costs = a.PrimaryStore
	}

	a.AnalysisService, err = services.NewAnalysisService(a.CompletionService, services.AnalysisConfig{
		DefaultVariant: variant,
		Instruction:    instruction,
		Temperature:    cfg.Model.Temperature,
		JSONOutput:     cfg.Model.JSONOutput,
		Timeout:        cfg.Model.Timeout,
		MaxInputChars:  cfg.Model.MaxInputChars,
		Tolerance:      cfg.Normalize.Tolerance,
	}, analyses, a.JobClient)
	if err != nil {
		return fmt.Errorf("init analysis service: %w", err)
	}
	a.HistoryService = services.NewHistoryService(analyses)
	a.CostService = services.NewCostService(costs)
	return nil
}

// Close releases the store, the job client and the completion client.
func (a *App) Close() error {
	var errs []error
	if a.JobClient != nil {
		errs = append(errs, a.JobClient.Close())
	}
	if cs, ok := a.CompletionService.(interface{ Close() error }); ok {
		errs = append(errs, cs.Close())
	}
	if a.PrimaryStore != nil {
		errs = append(errs, a.PrimaryStore.Close())
	}
	return errors.Join(errs...)
}

func (a *App) cleanupPartialInit() {
	if err := a.Close(); err != nil {
		log.Warnf("Error during cleanup: %v", err)
	}
}
