package sentiment

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"review_compare/internal/adapters/observability"
	"review_compare/internal/domain"
)

// Model is a trained classifier returning P(positive) for text.
type Model interface {
	Predict(ctx context.Context, text string) (float64, error)
}

// Func adapts a plain function to domain.SentimentScorer.
type Func func(ctx context.Context, text string) float64

func (f Func) Score(ctx context.Context, text string) float64 { return f(ctx, text) }

// New picks the scorer once at startup: the rules alone when there is no
// model, otherwise the model guarded by the rules.
func New(m Model) domain.SentimentScorer {
	if m == nil {
		return NewRules()
	}
	return NewFallback(m, NewRules())
}

type Fallback struct {
	model Model
	rules *Rules
}

func NewFallback(m Model, r *Rules) *Fallback {
	if r == nil {
		r = NewRules()
	}
	return &Fallback{model: m, rules: r}
}

func (f *Fallback) Score(ctx context.Context, text string) float64 {
	p, err := f.model.Predict(ctx, text)
	if err == nil && !math.IsNaN(p) {
		return clamp01(p)
	}
	if err != nil {
		log.Warn().Err(err).Msg("sentiment model failed; using rule-based score")
	}
	observability.ObserveScorerFallback()
	return f.rules.Score(ctx, text)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
