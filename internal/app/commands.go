package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

const upsertBatch = 200

type IngestionService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewIngestionService(r domain.ReviewRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{repo: r, cache: cache}
}

// IngestProduct stores reviews under product and evicts cached analyses.
// It returns the number of reviews written.
func (s *IngestionService) IngestProduct(ctx context.Context, product, category string, reviews []domain.Review) (int, error) {
	product = textutil.Normalize(product)
	if product == "" {
		return 0, fmt.Errorf("%w: empty product name", domain.ErrInvalidRequest)
	}
	var cat *string
	if category != "" {
		cat = &category
	}

	batch := make([]domain.Review, 0, upsertBatch)
	written := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.UpsertReviews(ctx, batch); err != nil {
			// do not swallow: a partial ingest must be visible
			return fmt.Errorf("upsert reviews for %q: %w", product, err)
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, rv := range reviews {
		if rv.Text == "" {
			continue
		}
		rv.Product = product
		if rv.Category == nil {
			rv.Category = cat
		}
		rv.Language = rv.Lang()
		if rv.SourceID == nil || *rv.SourceID == "" {
			id := reviewSourceID(rv)
			rv.SourceID = &id
		}
		batch = append(batch, rv)
		if len(batch) == upsertBatch {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}

	if written > 0 {
		s.invalidate(ctx, product)
	}
	return written, nil
}

// IngestRecords maps loosely shaped JSON review records and stores them.
func (s *IngestionService) IngestRecords(ctx context.Context, product, category string, records []map[string]any) (int, error) {
	return s.IngestProduct(ctx, product, category, mapReviews(textutil.Normalize(product), records))
}

// IngestSource pulls one product from src (CSV or scraper) into the repository.
// A product the source does not know is logged and skipped.
func (s *IngestionService) IngestSource(ctx context.Context, src domain.ReviewSource, product, category string) (int, error) {
	res, err := src.Fetch(ctx, product)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("product", product).Msg("ingest: source has no such product")
			s.logMiss(ctx, product, "not_found")
			return 0, nil
		}
		return 0, err
	}
	if !res.Found || len(res.Reviews) == 0 {
		log.Warn().Str("product", product).Msg("ingest: no reviews")
		s.logMiss(ctx, product, "no_reviews")
		return 0, nil
	}
	return s.IngestProduct(ctx, product, category, res.Reviews)
}

func (s *IngestionService) logMiss(ctx context.Context, product, reason string) {
	if err := s.repo.LogMiss(ctx, product, reason); err != nil {
		log.Warn().Err(err).Str("product", product).Msg("ingest: miss not recorded")
	}
}

// invalidate evicts every cached product view and memoized comparison.
// Lookups match names by substring, so a view cached under a shorter name
// ("iphone") may include this product too.
func (s *IngestionService) invalidate(ctx context.Context, product string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelMatch(ctx, productPrefix+"*"); err != nil {
		log.Warn().Err(err).Str("product", product).Msg("product cache eviction failed")
	}
	if err := s.cache.DelMatch(ctx, memoPrefix+"*"); err != nil {
		log.Warn().Err(err).Msg("comparison cache eviction failed")
	}
}
