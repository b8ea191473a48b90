package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"review_compare/internal/app"
	"review_compare/internal/aspects"
	"review_compare/internal/domain"
	"review_compare/internal/sentiment"
	"review_compare/internal/textutil"
)

// ---- fakes ----

type fakeSource struct {
	mu      sync.Mutex
	reviews map[string][]domain.Review // by textutil.Key
	errs    map[string]error
	calls   int
}

func newFakeSource() *fakeSource {
	return &fakeSource{reviews: map[string][]domain.Review{}, errs: map[string]error{}}
}

func (f *fakeSource) add(product string, texts ...string) *fakeSource {
	for _, t := range texts {
		f.reviews[textutil.Key(product)] = append(f.reviews[textutil.Key(product)], domain.Review{Text: t, Language: domain.LangHindi})
	}
	return f
}

func (f *fakeSource) Fetch(ctx context.Context, product string) (domain.SourceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := textutil.Key(product)
	if err := f.errs[k]; err != nil {
		return domain.SourceResult{}, err
	}
	rs := f.reviews[k]
	return domain.SourceResult{Found: len(rs) > 0, Reviews: rs}, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCatalog struct {
	byCategory map[string][]string
}

func (c *fakeCatalog) Products(ctx context.Context, category string) ([]string, error) {
	if category != "" {
		return c.byCategory[category], nil
	}
	var all []string
	for _, ps := range c.byCategory {
		all = append(all, ps...)
	}
	sort.Strings(all)
	return all, nil
}

func (c *fakeCatalog) Categories(ctx context.Context) ([]string, error) {
	var out []string
	for k := range c.byCategory {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (c *fakeCatalog) Search(ctx context.Context, q, category string) ([]string, error) {
	all, _ := c.Products(ctx, category)
	var out []string
	for _, p := range all {
		if strings.Contains(textutil.Key(p), textutil.Key(q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Category(ctx context.Context, product string) (string, error) {
	for cat, ps := range c.byCategory {
		for _, p := range ps {
			if textutil.Key(p) == textutil.Key(product) {
				return cat, nil
			}
		}
	}
	return "", domain.ErrNotFound
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	mu      sync.Mutex
	store   map[string][]byte
	matches []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DelMatch(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = append(c.matches, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

func constScorer(v float64) domain.SentimentScorer {
	return sentiment.Func(func(context.Context, string) float64 { return v })
}

func newAnalyzer(s domain.SentimentScorer) *app.Analyzer {
	return app.NewAnalyzer(aspects.NewExtractor(nil), s)
}

// ---- tests ----

func newQueries(src domain.ReviewSource, cat domain.Catalog, c domain.Cache) *app.QueryService {
	ex := aspects.NewExtractor(nil)
	return app.NewQueryService(cat, src, app.NewAnalyzer(ex, constScorer(0.8)), ex, c,
		app.QueryOptions{Version: "test", DataSource: "csv", CacheTTL: time.Minute})
}

func TestProduct_CacheMissThenHit(t *testing.T) {
	src := newFakeSource().add("iPhone 15", "कैमरा बहुत बढ़िया है", "battery is fine")
	cat := &fakeCatalog{byCategory: map[string][]string{"smartphone": {"iPhone 15"}}}
	cache := &fakeCache{}
	q := newQueries(src, cat, cache)

	pv, err := q.Product(context.Background(), "iphone 15")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if pv.Category != "smartphone" || pv.TotalReviews != 2 || pv.AspectScores["Camera"] != 80 {
		t.Fatalf("unexpected view: %+v", pv)
	}
	if !cache.has("product:iphone 15") {
		t.Fatal("expected product view to be cached")
	}

	again, err := q.Product(context.Background(), "IPHONE 15")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if src.Calls() != 1 {
		t.Fatalf("expected cache hit, source called %d times", src.Calls())
	}
	if again.OverallScore != pv.OverallScore || again.Category != pv.Category {
		t.Fatalf("cached view differs: %+v vs %+v", again, pv)
	}
}

func TestProduct_NotFoundAndInvalid(t *testing.T) {
	q := newQueries(newFakeSource(), nil, nil)
	if _, err := q.Product(context.Background(), "Nokia 3310"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := q.Product(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCatalogQueries(t *testing.T) {
	cat := &fakeCatalog{byCategory: map[string][]string{
		"smartphone": {"Pixel 8", "iPhone 15"},
		"tv":         {"Sony Bravia"},
	}}
	q := newQueries(newFakeSource(), cat, nil)
	ctx := context.Background()

	if _, err := q.Search(ctx, "  ", ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("empty query should be invalid, got %v", err)
	}
	got, err := q.Search(ctx, "pixel", "")
	if err != nil || !reflect.DeepEqual(got, []string{"Pixel 8"}) {
		t.Fatalf("Search = %v err=%v", got, err)
	}

	st, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalProducts != 3 || !reflect.DeepEqual(st.Categories, []string{"smartphone", "tv"}) {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.ProductsByCategory["tv"] != 1 || st.ProductsByCategory["smartphone"] != 2 {
		t.Fatalf("unexpected products_by_category: %+v", st.ProductsByCategory)
	}

	h := q.Health(ctx)
	if h.Status != "healthy" || h.TotalProducts != 3 || h.DataSource != "csv" {
		t.Fatalf("unexpected health: %+v", h)
	}
}

func TestCatalogQueries_NoCatalog(t *testing.T) {
	q := newQueries(newFakeSource(), nil, nil)
	ps, err := q.Products(context.Background(), "")
	if err != nil || ps == nil || len(ps) != 0 {
		t.Fatalf("expected empty non-nil list, got %v err=%v", ps, err)
	}
	if h := q.Health(context.Background()); h.TotalProducts != 0 || h.Categories == nil {
		t.Fatalf("unexpected health: %+v", h)
	}
}

func TestAspectSentences(t *testing.T) {
	src := newFakeSource().add("Galaxy S24",
		"कैमरा शानदार है। बैटरी कमजोर है।",
		"Display is bright. Camera is sharp!",
		"Sound is loud.",
	)
	q := newQueries(src, nil, nil)

	ex, err := q.AspectSentences(context.Background(), "galaxy s24", "Camera")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []string{"कैमरा शानदार है", "Camera is sharp"}
	if !reflect.DeepEqual(ex.Sentences, want) || ex.Reviews != 2 {
		t.Fatalf("got %+v, want sentences %q", ex, want)
	}
}
