// Package csvsource serves reviews from a static CSV dataset.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

// column alias registry: header name variants accepted per field
var columnAliases = map[string][]string{
	"product":  {"product_name", "product", "name", "model"},
	"category": {"category", "type", "segment"},
	"text":     {"text", "review", "review_text", "comment", "content", "body"},
	"rating":   {"rating", "rate", "stars", "score"},
	"aspect":   {"aspect", "feature"},
	"language": {"language", "lang", "locale"},
	"source":   {"source", "platform", "site"},
}

type Options struct {
	// ScoreFromRating derives SentimentScore as rating/5 when a rating exists.
	ScoreFromRating bool
}

type row struct {
	product  string
	key      string // folded product name
	category string
	review   domain.Review
}

// Source is an in-memory, read-only view of the dataset.
type Source struct {
	rows []row
}

// Load reads the dataset from path.
func Load(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	s, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Parse reads a dataset with a header row. Rows without product or text
// are skipped; a bad rating becomes nil.
func Parse(r io.Reader, opts Options) (*Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Source{}, nil
	}
	if err != nil {
		return nil, err
	}
	cols := resolveColumns(header)
	if _, ok := cols["product"]; !ok {
		return nil, errors.New("missing product column")
	}
	if _, ok := cols["text"]; !ok {
		return nil, errors.New("missing text column")
	}

	s := &Source{}
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		product, text := textutil.Normalize(get("product")), textutil.Normalize(get("text"))
		if product == "" || text == "" {
			skipped++
			continue
		}
		rv := domain.Review{
			Product:  product,
			Text:     text,
			Rating:   parseRating(get("rating")),
			Language: textutil.ParseLanguage(get("language")),
			Aspect:   ptrStr(get("aspect")),
			Source:   ptrStr(get("source")),
		}
		cat := get("category")
		rv.Category = ptrStr(cat)
		if opts.ScoreFromRating && rv.Rating != nil {
			v := float64(*rv.Rating) / 5
			rv.SentimentScore = &v
		}
		s.rows = append(s.rows, row{product: product, key: textutil.Key(product), category: cat, review: rv})
	}

	log.Info().
		Int("reviews", len(s.rows)).
		Int("skipped", skipped).
		Int("products", len(s.distinctProducts(""))).
		Msg("csv dataset loaded")
	return s, nil
}

func resolveColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	out := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := idx[a]; ok {
				out[field] = i
				break
			}
		}
	}
	return out
}

// parseRating accepts "4", "4.0" and "4,0"; values outside 1..5 are dropped.
func parseRating(s string) *int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f > 5 {
		return nil
	}
	n := int(f)
	return &n
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// matches is the case-insensitive partial match used for lookups.
func (r row) matches(q string) bool { return strings.Contains(r.key, q) }

// Fetch returns every review whose product name contains the identifier.
func (s *Source) Fetch(ctx context.Context, product string) (domain.SourceResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.SourceResult{}, err
	}
	q := textutil.Key(product)
	if q == "" {
		return domain.SourceResult{}, nil
	}
	var out []domain.Review
	for _, r := range s.rows {
		if r.matches(q) {
			out = append(out, r.review)
		}
	}
	if len(out) == 0 {
		log.Warn().Str("product", product).Msg("no reviews in dataset")
	}
	return domain.SourceResult{Found: len(out) > 0, Reviews: out}, nil
}

// Products lists distinct product names, sorted; category filters exactly.
func (s *Source) Products(_ context.Context, category string) ([]string, error) {
	out := s.distinctProducts(category)
	sort.Strings(out)
	return out, nil
}

func (s *Source) distinctProducts(category string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range s.rows {
		if category != "" && r.category != category {
			continue
		}
		if _, ok := seen[r.product]; ok {
			continue
		}
		seen[r.product] = struct{}{}
		out = append(out, r.product)
	}
	return out
}

func (s *Source) Categories(_ context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range s.rows {
		if r.category == "" {
			continue
		}
		if _, ok := seen[r.category]; ok {
			continue
		}
		seen[r.category] = struct{}{}
		out = append(out, r.category)
	}
	sort.Strings(out)
	return out, nil
}

// Search returns matching product names in dataset order.
func (s *Source) Search(_ context.Context, query, category string) ([]string, error) {
	q := textutil.Key(query)
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range s.rows {
		if category != "" && r.category != category {
			continue
		}
		if !r.matches(q) {
			continue
		}
		if _, ok := seen[r.product]; ok {
			continue
		}
		seen[r.product] = struct{}{}
		out = append(out, r.product)
	}
	return out, nil
}

// Category returns the category of the first matching row.
func (s *Source) Category(_ context.Context, product string) (string, error) {
	q := textutil.Key(product)
	if q != "" {
		for _, r := range s.rows {
			if r.matches(q) {
				return r.category, nil
			}
		}
	}
	return "", domain.ErrNotFound
}

// Len is the number of loaded reviews.
func (s *Source) Len() int { return len(s.rows) }

// Grouped returns reviews per exact product name, in dataset order.
func (s *Source) Grouped() (names []string, byProduct map[string][]domain.Review) {
	byProduct = map[string][]domain.Review{}
	for _, r := range s.rows {
		if _, ok := byProduct[r.product]; !ok {
			names = append(names, r.product)
		}
		byProduct[r.product] = append(byProduct[r.product], r.review)
	}
	return names, byProduct
}
