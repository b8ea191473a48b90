package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"review_compare/internal/adapters/observability"
	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

const memoPrefix = "compare:"

// CompareService fetches and analyzes every requested product, then builds
// the comparison. Per-product analyses may be memoized in cache.
type CompareService struct {
	src      domain.ReviewSource
	analyzer *Analyzer
	cache    domain.Cache // nil disables memoization
	cacheTTL time.Duration
	workers  int
}

func NewCompareService(src domain.ReviewSource, a *Analyzer, c domain.Cache, ttl time.Duration, workers int) *CompareService {
	if workers <= 0 {
		workers = 4
	}
	return &CompareService{src: src, analyzer: a, cache: c, cacheTTL: ttl, workers: workers}
}

// MemoKey is the cache key for a set of products: order, case and
// duplicates do not matter.
func MemoKey(products []string) string {
	keys := make([]string, 0, len(products))
	seen := map[string]struct{}{}
	for _, p := range products {
		k := textutil.Key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return memoPrefix + strings.Join(keys, "|")
}

// dedupe keeps the first spelling of each product, dropping blanks.
func dedupe(products []string) []string {
	out := make([]string, 0, len(products))
	seen := map[string]struct{}{}
	for _, p := range products {
		p = textutil.Normalize(p)
		k := textutil.Key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Compare runs the pipeline for products. A product without reviews is a
// normal outcome; only source failures other than ErrNotFound are returned.
func (s *CompareService) Compare(ctx context.Context, products []string) (domain.ComparisonResult, error) {
	start := time.Now()
	products = dedupe(products)
	for _, p := range products {
		if p == domain.AspectColumn {
			return domain.ComparisonResult{}, fmt.Errorf("%w: product name %q is reserved", domain.ErrInvalidRequest, p)
		}
	}
	key := MemoKey(products)

	var byKey map[string]domain.AnalysisResult
	if s.cache != nil {
		var cached map[string]domain.AnalysisResult
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("comparison cache read failed")
		} else if ok {
			byKey = cached
		}
	}

	if byKey == nil {
		var err error
		if byKey, err = s.analyzeAll(ctx, products); err != nil {
			return domain.ComparisonResult{}, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, byKey, int(s.cacheTTL.Seconds())); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("comparison cache write failed")
			}
		}
	}

	// request order and spelling are re-applied on every call
	analyses := make(map[string]domain.AnalysisResult, len(byKey))
	for _, p := range products {
		if a, ok := byKey[textutil.Key(p)]; ok {
			a.Product = p
			analyses[p] = a
		}
	}
	res := BuildComparison(products, analyses)

	observability.ObserveCompare(time.Since(start))
	log.Info().
		Strs("products", products).
		Str("winner", res.Comparison.Winner).
		Dur("duration", time.Since(start)).
		Msg("comparison built")
	return res, nil
}

func (s *CompareService) analyzeAll(ctx context.Context, products []string) (map[string]domain.AnalysisResult, error) {
	slots := make([]*domain.AnalysisResult, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range products {
		g.Go(func() error {
			res, err := s.src.Fetch(gctx, p)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("fetch reviews for %q: %w", p, err)
			}
			if err != nil || !res.Found || len(res.Reviews) == 0 {
				log.Warn().Str("product", p).Msg("no reviews found")
				observability.ObserveAnalysis(false)
				return nil
			}
			a := s.analyzer.Analyze(gctx, p, res.Reviews)
			slots[i] = &a
			observability.ObserveAnalysis(true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]domain.AnalysisResult, len(products))
	for i, p := range products {
		if slots[i] != nil {
			out[textutil.Key(p)] = *slots[i]
		}
	}
	return out, nil
}

// Invalidate drops the memoized comparison for exactly this product set.
func (s *CompareService) Invalidate(ctx context.Context, products []string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, MemoKey(products))
}

// InvalidateAll drops every memoized comparison.
func (s *CompareService) InvalidateAll(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DelMatch(ctx, memoPrefix+"*")
}
