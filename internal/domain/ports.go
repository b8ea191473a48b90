package domain

import "context"

// SourceResult is what a ReviewSource yields for one product identifier.
// Found=false and an empty Reviews slice mean the same thing to callers.
type SourceResult struct {
	Found   bool
	Reviews []Review
}

type ReviewSource interface {
	Fetch(ctx context.Context, product string) (SourceResult, error)
}

type Catalog interface {
	Products(ctx context.Context, category string) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, q, category string) ([]string, error)
	Category(ctx context.Context, product string) (string, error)
}

type ReviewRepository interface {
	ReviewSource
	Catalog

	UpsertReviews(ctx context.Context, rs []Review) error
	// LogMiss records a product an ingest run asked for but the source lacked.
	LogMiss(ctx context.Context, product, reason string) error
}

type AspectExtractor interface {
	Extract(text string) []string
	Sentences(text, aspect string) []string
}

// SentimentScorer maps review text to [0,1]; 0 is most negative, 1 most positive.
// Implementations recover from their own failures and never return an error.
type SentimentScorer interface {
	Score(ctx context.Context, text string) float64
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	DelMatch(ctx context.Context, pattern string) error
}
