package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"promptchart/internal/costtracker"
	"promptchart/internal/reqctx"
	"promptchart/internal/store"
	"promptchart/pkg/extract"
)

// contentGenerator is the part of *genai.GenerativeModel the provider uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiProvider implements CompletionService using the Google Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	costTracker costtracker.CostTracker

	// newModel builds a configured model per call; models carry settings and
	// are not shared between requests.
	newModel func(system string, req extract.CompletionRequest) contentGenerator
}

var _ CompletionService = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider. An empty API key yields a
// disabled provider.
func NewGeminiProvider(ctx context.Context, apiKey, model string, tracker costtracker.CostTracker) (*GeminiProvider, error) {
	if apiKey == "" {
		log.Warn("Gemini API key not provided. Gemini provider will be disabled.")
		return &GeminiProvider{model: model, costTracker: tracker}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Infof("Gemini provider initialized with model %s", model)

	p := &GeminiProvider{client: client, model: model, costTracker: tracker}
	p.newModel = func(system string, req extract.CompletionRequest) contentGenerator {
		m := client.GenerativeModel(model)
		configureModel(m, system, req)
		return m
	}
	return p, nil
}

func configureModel(m *genai.GenerativeModel, system string, req extract.CompletionRequest) {
	if system != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	if req.JSONOutput {
		m.ResponseMIMEType = "application/json"
	}
	if req.Temperature != nil {
		m.SetTemperature(*req.Temperature)
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return "gemini" }

// ModelName returns the specific model identifier.
func (p *GeminiProvider) ModelName() string { return p.model }

// Status returns the operational status of the provider.
func (p *GeminiProvider) Status() store.ProviderStatus {
	if p.newModel == nil {
		return store.ProviderStatusDisabled
	}
	return store.ProviderStatusActive
}

// Complete maps system messages to the model's system instruction and sends
// the remaining messages as the prompt.
func (p *GeminiProvider) Complete(ctx context.Context, req extract.CompletionRequest) (string, error) {
	if p.newModel == nil {
		return "", errors.New("Gemini provider is not initialized (missing API key)")
	}

	var system []string
	var parts []genai.Part
	for _, m := range req.Messages {
		if m.Role == extract.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(parts) == 0 {
		return "", errors.New("gemini request has no user content")
	}

	resp, err := p.newModel(strings.Join(system, "\n\n"), req).GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	p.recordUsage(ctx, resp)
	return responseText(resp)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned from Gemini")
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return "", fmt.Errorf("gemini candidate has no content (finish reason %s)", c.FinishReason)
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

func (p *GeminiProvider) recordUsage(ctx context.Context, resp *genai.GenerateContentResponse) {
	if p.costTracker == nil || resp == nil || resp.UsageMetadata == nil {
		return
	}
	u := resp.UsageMetadata
	err := p.costTracker.Record(ctx, costtracker.Usage{
		Provider:     p.Name(),
		Model:        p.model,
		InputTokens:  int(u.PromptTokenCount),
		OutputTokens: int(u.CandidatesTokenCount),
	})
	if err != nil {
		log.WithFields(log.Fields(reqctx.Fields(ctx))).Errorf("Failed to record AI usage log: %v", err)
	}
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
