package services

import (
	"promptchart/internal/store"
	"promptchart/pkg/extract"
)

// CompletionService is an external text-completion provider.
type CompletionService interface {
	extract.Completer
	Status() store.ProviderStatus
	Name() string      // Provider name (e.g., "openai", "gemini")
	ModelName() string // Specific model used
}
