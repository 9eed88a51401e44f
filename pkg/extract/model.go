package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"promptchart/pkg/category"
)

// ModelConfig is injected into a ModelExtractor at construction.
type ModelConfig struct {
	Variant Variant
	// Instruction overrides the variant's built-in system instruction.
	Instruction string
	// Temperature defaults to zero (deterministic sampling) when nil.
	Temperature *float32
	JSONOutput  bool
	// Timeout bounds the single completion call. Zero means no extra deadline.
	Timeout time.Duration
	// MaxInputChars truncates the user text before it is sent. Zero disables.
	MaxInputChars int
}

// ModelResult separates "the call went through" from "the call produced
// something usable". A non-nil Malformed means the reply was received but
// could not be read; Entries is empty in that case.
type ModelResult struct {
	Entries   []category.Entry
	Raw       string
	Malformed error
}

// ModelExtractor delegates extraction to an external completion service.
type ModelExtractor struct {
	client Completer
	cfg    ModelConfig
}

// NewModelExtractor builds a ModelExtractor. The client must not be nil.
func NewModelExtractor(client Completer, cfg ModelConfig) (*ModelExtractor, error) {
	if client == nil {
		return nil, fmt.Errorf("model extractor: completion client is required")
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantGeneral
	}
	if cfg.Temperature == nil {
		zero := float32(0)
		cfg.Temperature = &zero
	}
	return &ModelExtractor{client: client, cfg: cfg}, nil
}

// Variant returns the configured instruction variant.
func (e *ModelExtractor) Variant() Variant {
	return e.cfg.Variant
}

func (e *ModelExtractor) instruction() string {
	if strings.TrimSpace(e.cfg.Instruction) != "" {
		return e.cfg.Instruction
	}
	return e.cfg.Variant.Instruction()
}

// Extract makes exactly one completion call. A returned error is a transport
// or service failure; reply problems are reported through ModelResult.Malformed.
func (e *ModelExtractor) Extract(ctx context.Context, text string) (ModelResult, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	input := TruncateInput(text, e.cfg.MaxInputChars)
	if len(input) < len(text) {
		log.WithFields(log.Fields{
			"original_len":  len(text),
			"truncated_len": len(input),
		}).Debug("Truncated prompt before model extraction")
	}

	req := CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: e.instruction()},
			{Role: RoleUser, Content: input},
		},
		JSONOutput:  e.cfg.JSONOutput,
		Temperature: e.cfg.Temperature,
	}

	raw, err := e.client.Complete(ctx, req)
	if err != nil {
		return ModelResult{}, err
	}

	entries, perr := ParseReply(raw)
	if perr != nil {
		log.WithError(perr).WithField("reply", excerpt(raw, 200)).Warn("Model reply could not be parsed, treating as empty")
		return ModelResult{Entries: []category.Entry{}, Raw: raw, Malformed: perr}, nil
	}
	return ModelResult{Entries: entries, Raw: raw}, nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
