// Package grader grades quiz answers and produces answering suggestions
// with a configurable language model backend.
package grader

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/mcp-adapters/internal/config"
	"github.com/felixgeelhaar/mcp-adapters/internal/logging"
	"github.com/felixgeelhaar/mcp-adapters/internal/quiz"
)

// Generation settings per call.
var (
	evaluationCall  = Completion{Temperature: 0.3, MaxTokens: 2000}
	suggestionsCall = Completion{Temperature: 0.7, MaxTokens: 1000}
)

// Fixed suggestion replies.
const (
	SuggestionsUnavailable = "Answering suggestions are currently unavailable. Work through the question description and reference answer on your own."
	SuggestionsFailed      = "Something went wrong while fetching answering suggestions. Please try again later."
)

// Evaluator grades answers. Its methods never return errors: failures are
// logged and replaced by fixed results.
type Evaluator struct {
	provider string
	backend  Backend
	initErr  error
	log      *zap.Logger
}

// Option configures an Evaluator.
type Option func(*evaluatorOptions)

type evaluatorOptions struct {
	http *http.Client
	log  *zap.Logger
}

// WithHTTPClient sets the client used by HTTP backends.
func WithHTTPClient(h *http.Client) Option {
	return func(o *evaluatorOptions) {
		o.http = h
	}
}

// WithLogger sets the logger for failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *evaluatorOptions) {
		o.log = l
	}
}

// New builds an evaluator for cfg. A configuration problem does not fail
// construction; every later call degrades to its fallback instead.
func New(cfg config.LLM, opts ...Option) *Evaluator {
	o := evaluatorOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	backend, err := NewBackend(cfg, o.http)
	e := &Evaluator{provider: cfg.Provider, backend: backend, initErr: err, log: logging.OrNop(o.log)}
	if err != nil {
		e.log.Warn("answer evaluator is not configured", zap.String("provider", cfg.Provider), zap.Error(err))
	}
	return e
}

// NewWithBackend builds an evaluator around an existing backend.
func NewWithBackend(b Backend, log *zap.Logger) *Evaluator {
	return &Evaluator{provider: b.Name(), backend: b, log: logging.OrNop(log)}
}

// Evaluate grades answer. A reply without usable JSON scores 60 as
// partially correct; no reply at all scores 0 as incorrect.
func (e *Evaluator) Evaluate(ctx context.Context, q quiz.Question, answer string) Evaluation {
	if e.initErr != nil {
		e.log.Error("answer evaluation failed", zap.Int("question_id", q.ID), zap.Error(e.initErr))
		return Unavailable()
	}

	call := evaluationCall
	call.Prompt = EvaluationPrompt(q, answer)
	raw, err := e.backend.Complete(ctx, call)
	if err != nil {
		e.log.Error("answer evaluation failed",
			zap.Int("question_id", q.ID), zap.String("backend", e.backend.Name()), zap.Error(err))
		return Unavailable()
	}

	eval, ok := parseEvaluation(raw)
	if !ok {
		e.log.Warn("evaluation reply could not be parsed", zap.Int("question_id", q.ID), zap.Int("reply_length", len(raw)))
	}
	return eval
}

// Suggestions returns the model's answering advice for q. Only the zhipu
// backend is asked; others get the fixed unavailable text.
func (e *Evaluator) Suggestions(ctx context.Context, q quiz.Question) string {
	if e.provider != ProviderZhipu {
		return SuggestionsUnavailable
	}
	if e.initErr != nil {
		e.log.Error("answering suggestions failed", zap.Int("question_id", q.ID), zap.Error(e.initErr))
		return SuggestionsFailed
	}

	call := suggestionsCall
	call.Prompt = SuggestionsPrompt(q)
	text, err := e.backend.Complete(ctx, call)
	if err != nil {
		e.log.Error("answering suggestions failed", zap.Int("question_id", q.ID), zap.Error(err))
		return SuggestionsFailed
	}
	return text
}
