package costtracker

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"promptchart/internal/config"
	"promptchart/internal/models"
	"promptchart/internal/reqctx"
	"promptchart/internal/store"
)

// Usage is the token count of one completion call.
type Usage struct {
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
}

// CostTracker records priced usage.
type CostTracker interface {
	Record(ctx context.Context, u Usage) error
}

// New returns a tracker writing to s. A nil store yields a tracker that only
// logs.
func New(s store.CostTrackingStore, pricing map[string]map[string]config.PricingInfo) CostTracker {
	if s == nil {
		return &noopCostTracker{}
	}
	return &storeCostTracker{store: s, pricing: pricing}
}

type storeCostTracker struct {
	store   store.CostTrackingStore
	pricing map[string]map[string]config.PricingInfo
}

// Cost prices u with the configured table. ok is false when no price is known.
func Cost(pricing map[string]map[string]config.PricingInfo, u Usage) (cost float64, ok bool) {
	price, ok := pricing[u.Provider][u.Model]
	if !ok {
		return 0, false
	}
	return float64(u.InputTokens)*price.InputPerToken + float64(u.OutputTokens)*price.OutputPerToken, true
}

func (t *storeCostTracker) Record(ctx context.Context, u Usage) error {
	cost, ok := Cost(t.pricing, u)
	if !ok {
		log.Warnf("Pricing info not found for %s model '%s'. Recording zero cost.", u.Provider, u.Model)
	}

	entry := &models.AIUsageLog{
		Timestamp:    time.Now(),
		ProviderName: u.Provider,
		ServiceType:  models.ServiceTypeAnalysis,
		ModelName:    u.Model,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		Cost:         cost,
	}
	if id, ok := reqctx.RequestID(ctx); ok {
		entry.RequestID = &id
	}
	if id, ok := reqctx.AnalysisID(ctx); ok {
		entry.AnalysisID = &id
	}

	if err := t.store.RecordUsage(ctx, entry); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	log.Debugf("Recorded AI usage: Provider=%s, Model=%s, InputTokens=%d, OutputTokens=%d, Cost=%.8f",
		entry.ProviderName, entry.ModelName, entry.InputTokens, entry.OutputTokens, entry.Cost)
	return nil
}

type noopCostTracker struct{}

func (n *noopCostTracker) Record(ctx context.Context, u Usage) error {
	log.WithFields(log.Fields(reqctx.Fields(ctx))).Debugf("AI usage (not persisted): Provider=%s, Model=%s, InputTokens=%d, OutputTokens=%d",
		u.Provider, u.Model, u.InputTokens, u.OutputTokens)
	return nil
}
