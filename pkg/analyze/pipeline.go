// Package analyze orchestrates extraction and normalization of a prompt into
// a percentage breakdown.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"promptchart/pkg/category"
	"promptchart/pkg/extract"
	"promptchart/pkg/normalize"
)

// State is a step of a single pipeline run.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateNormalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateNormalizing:
		return "normalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source names the extractor whose output was normalized.
type Source string

const (
	SourcePattern Source = "pattern"
	SourceModel   Source = "model"
)

// PatternExtractor is the deterministic fast path.
type PatternExtractor interface {
	Extract(text string) []category.Category
}

// ModelExtractor is the completion-service fallback.
type ModelExtractor interface {
	Extract(ctx context.Context, text string) (extract.ModelResult, error)
}

// Result is a successful run.
type Result struct {
	Categories []category.Category `json:"categories"`
	Source     Source              `json:"source"`
	// Malformed is set when the model replied with something unreadable but
	// the run still ended without a terminal error. Always nil on the pattern path.
	Malformed error `json:"-"`
	// ModelReply is the raw completion text, empty on the pattern path.
	ModelReply string        `json:"-"`
	Duration   time.Duration `json:"-"`
}

// TransitionFunc observes state changes of a run.
type TransitionFunc func(from, to State)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTransitionHook registers fn to be called on every state change.
func WithTransitionHook(fn TransitionFunc) Option {
	return func(p *Pipeline) { p.onTransition = fn }
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Pipeline) { p.normalizer = n }
}

// Pipeline runs pattern extraction, falls back to the model when the pattern
// finds nothing, and normalizes the result. A Pipeline holds no per-run state
// and is safe for concurrent use.
type Pipeline struct {
	pattern      PatternExtractor
	model        ModelExtractor
	normalizer   *normalize.Normalizer
	onTransition TransitionFunc
}

// New builds a Pipeline. model may be nil, in which case a prompt the pattern
// extractor cannot read fails with ErrUpstreamFailure.
func New(pattern PatternExtractor, model ModelExtractor, opts ...Option) *Pipeline {
	if pattern == nil {
		pattern = extract.NewPatternExtractor(nil)
	}
	p := &Pipeline{
		pattern:    pattern,
		model:      model,
		normalizer: normalize.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.onTransition == nil {
		p.onTransition = func(from, to State) {
			log.WithFields(log.Fields{"from": from, "to": to}).Trace("Pipeline transition")
		}
	}
	return p
}

type run struct {
	state State
	hook  TransitionFunc
}

func (r *run) to(next State) {
	if r.hook != nil {
		r.hook(r.state, next)
	}
	r.state = next
}

func (r *run) fail(kind, cause error) error {
	r.to(StateFailed)
	return &Error{Kind: kind, Err: cause}
}

// Run analyzes prompt. The returned error is always an *Error.
func (p *Pipeline) Run(ctx context.Context, prompt string) (*Result, error) {
	r := &run{state: StateIdle, hook: p.onTransition}
	start := time.Now()

	if strings.TrimSpace(prompt) == "" {
		return nil, r.fail(ErrInvalidInput, nil)
	}

	r.to(StateExtracting)
	res := &Result{Source: SourcePattern}
	var entries []category.Entry

	if cats := p.pattern.Extract(prompt); len(cats) > 0 {
		log.WithField("matches", len(cats)).Debug("Pattern extraction matched, skipping model")
		entries = category.Entries(cats)
	} else {
		if p.model == nil {
			return nil, r.fail(ErrUpstreamFailure, errors.New("no completion service configured"))
		}
		res.Source = SourceModel
		mr, err := p.model.Extract(ctx, prompt)
		if err != nil {
			log.WithError(err).Error("Model extraction failed")
			return nil, r.fail(ErrUpstreamFailure, err)
		}
		entries = mr.Entries
		res.Malformed = mr.Malformed
		res.ModelReply = mr.Raw
	}

	r.to(StateNormalizing)
	cats, err := p.normalizer.Normalize(entries)
	if err != nil {
		cause := err
		if res.Malformed != nil {
			cause = errors.Join(err, res.Malformed)
		}
		log.WithFields(log.Fields{
			"source":  res.Source,
			"entries": len(entries),
		}).Info("No usable data after normalization")
		return nil, r.fail(ErrNoExtractableData, cause)
	}

	r.to(StateDone)
	res.Categories = cats
	res.Duration = time.Since(start)
	log.WithFields(log.Fields{
		"source":     res.Source,
		"categories": len(cats),
		"elapsed_ms": res.Duration.Milliseconds(),
	}).Debug("Prompt analyzed")
	return res, nil
}
