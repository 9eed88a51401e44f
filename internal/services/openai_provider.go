package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"promptchart/internal/costtracker"
	"promptchart/internal/reqctx"
	"promptchart/internal/store"
	"promptchart/pkg/extract"
)

// ChatCompletionCreator is the part of the OpenAI client the provider uses.
type ChatCompletionCreator interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider implements CompletionService with the OpenAI chat API or any
// compatible endpoint.
type OpenAIProvider struct {
	client      ChatCompletionCreator
	model       string
	costTracker costtracker.CostTracker
}

var _ CompletionService = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider. An empty API key yields a disabled
// provider whose calls fail.
func NewOpenAIProvider(apiKey, baseURL, model string, tracker costtracker.CostTracker) *OpenAIProvider {
	if apiKey == "" {
		log.Warn("OpenAI API key not provided. OpenAI provider will be disabled.")
		return &OpenAIProvider{model: model, costTracker: tracker}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	log.Infof("OpenAI provider initialized with model %s", model)
	return NewOpenAIProviderWithClient(openai.NewClientWithConfig(cfg), model, tracker)
}

// NewOpenAIProviderWithClient wires an existing client.
func NewOpenAIProviderWithClient(client ChatCompletionCreator, model string, tracker costtracker.CostTracker) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model, costTracker: tracker}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// ModelName returns the specific model identifier.
func (p *OpenAIProvider) ModelName() string { return p.model }

// Status returns the operational status of the provider.
func (p *OpenAIProvider) Status() store.ProviderStatus {
	if p.client == nil {
		return store.ProviderStatusDisabled
	}
	return store.ProviderStatusActive
}

// Complete sends one chat completion and returns the first choice's text.
func (p *OpenAIProvider) Complete(ctx context.Context, req extract.CompletionRequest) (string, error) {
	if p.client == nil {
		return "", errors.New("OpenAI provider is not initialized (missing API key)")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openAIRole(m.Role), Content: m.Content})
	}

	creq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: msgs,
	}
	if req.Temperature != nil {
		// Temperature is omitempty, so an exact zero would not be sent at all.
		creq.Temperature = *req.Temperature
		if creq.Temperature == 0 {
			creq.Temperature = math.SmallestNonzeroFloat32
		}
	}
	if req.JSONOutput {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	p.recordUsage(ctx, resp.Usage)

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) recordUsage(ctx context.Context, u openai.Usage) {
	if p.costTracker == nil || u.TotalTokens == 0 {
		return
	}
	err := p.costTracker.Record(ctx, costtracker.Usage{
		Provider:     p.Name(),
		Model:        p.model,
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
	})
	if err != nil {
		log.WithFields(log.Fields(reqctx.Fields(ctx))).Errorf("Failed to record AI usage log: %v", err)
	}
}

func openAIRole(r extract.Role) string {
	switch r {
	case extract.RoleSystem:
		return openai.ChatMessageRoleSystem
	case extract.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
