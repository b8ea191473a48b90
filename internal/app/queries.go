package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

const productPrefix = "product:"

// QueryService answers catalog and single-product questions. catalog may be
// nil (live scraping has no catalog); listing calls then return empty results.
type QueryService struct {
	catalog    domain.Catalog
	src        domain.ReviewSource
	analyzer   *Analyzer
	extractor  domain.AspectExtractor
	cache      domain.Cache
	cacheTTL   time.Duration
	version    string
	dataSource string
}

type QueryOptions struct {
	Version    string
	DataSource string
	CacheTTL   time.Duration
}

func NewQueryService(cat domain.Catalog, src domain.ReviewSource, a *Analyzer, ex domain.AspectExtractor,
	c domain.Cache, opts QueryOptions) *QueryService {
	return &QueryService{
		catalog: cat, src: src, analyzer: a, extractor: ex, cache: c,
		cacheTTL: opts.CacheTTL, version: opts.Version, dataSource: opts.DataSource,
	}
}

func (s *QueryService) Products(ctx context.Context, category string) ([]string, error) {
	if s.catalog == nil {
		return []string{}, nil
	}
	return nonNil(s.catalog.Products(ctx, strings.TrimSpace(category)))
}

func (s *QueryService) Categories(ctx context.Context) ([]string, error) {
	if s.catalog == nil {
		return []string{}, nil
	}
	return nonNil(s.catalog.Categories(ctx))
}

func (s *QueryService) Search(ctx context.Context, q, category string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.catalog == nil {
		return []string{}, nil
	}
	return nonNil(s.catalog.Search(ctx, q, strings.TrimSpace(category)))
}

func nonNil(xs []string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	if xs == nil {
		xs = []string{}
	}
	return xs, nil
}

// Product analyzes a single product; ErrNotFound when it has no reviews.
func (s *QueryService) Product(ctx context.Context, name string) (domain.ProductView, error) {
	name = textutil.Normalize(name)
	key := productPrefix + textutil.Key(name)
	var pv domain.ProductView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &pv); ok {
			return pv, nil
		}
	}

	reviews, err := s.reviews(ctx, name)
	if err != nil {
		return domain.ProductView{}, err
	}
	pv.AnalysisResult = s.analyzer.Analyze(ctx, name, reviews)
	if s.catalog != nil {
		cat, err := s.catalog.Category(ctx, name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.ProductView{}, err
		}
		pv.Category = cat
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, pv, int(s.cacheTTL.Seconds()))
	}
	return pv, nil
}

// AspectSentences explains an aspect score with the sentences that mention it.
func (s *QueryService) AspectSentences(ctx context.Context, name, aspect string) (domain.AspectExplanation, error) {
	name = textutil.Normalize(name)
	reviews, err := s.reviews(ctx, name)
	if err != nil {
		return domain.AspectExplanation{}, err
	}
	out := domain.AspectExplanation{Product: name, Aspect: aspect, Sentences: []string{}}
	for _, rv := range reviews {
		if ss := s.extractor.Sentences(rv.Text, aspect); len(ss) > 0 {
			out.Sentences = append(out.Sentences, ss...)
			out.Reviews++
		}
	}
	return out, nil
}

func (s *QueryService) reviews(ctx context.Context, name string) ([]domain.Review, error) {
	if textutil.Key(name) == "" {
		return nil, domain.ErrInvalidRequest
	}
	res, err := s.src.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if !res.Found || len(res.Reviews) == 0 {
		return nil, domain.ErrNotFound
	}
	return res.Reviews, nil
}

func (s *QueryService) Stats(ctx context.Context) (domain.Stats, error) {
	st := domain.Stats{Categories: []string{}, ProductsByCategory: map[string]int{}}
	if s.catalog == nil {
		return st, nil
	}
	all, err := s.catalog.Products(ctx, "")
	if err != nil {
		return st, err
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return st, err
	}
	st.TotalProducts, st.Categories = len(all), cats
	for _, c := range cats {
		ps, err := s.catalog.Products(ctx, c)
		if err != nil {
			return st, err
		}
		st.ProductsByCategory[c] = len(ps)
	}
	return st, nil
}

func (s *QueryService) Health(ctx context.Context) domain.Health {
	h := domain.Health{Status: "healthy", Version: s.version, DataSource: s.dataSource, Categories: []string{}}
	if s.catalog == nil {
		return h
	}
	all, err := s.catalog.Products(ctx, "")
	if err != nil {
		h.Status = "degraded"
		return h
	}
	h.TotalProducts = len(all)
	if cats, err := s.Categories(ctx); err == nil {
		h.Categories = cats
	}
	return h
}
