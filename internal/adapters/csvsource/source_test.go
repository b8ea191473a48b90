package csvsource_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"review_compare/internal/adapters/csvsource"
	"review_compare/internal/domain"
)

const dataset = `product_name,category,text,rating,aspect,language
iPhone 15 Pro,smartphone,कैमरा बहुत बढ़िया है,5,Camera,hindi
iPhone 15 Pro,smartphone,बॅटरी थोडी कमी आहे,"3,0",Battery,marathi
Samsung Galaxy S24,smartphone,Display is great,4,Display,english
Samsung Galaxy S24,smartphone,,4,Display,hindi
Sony Bravia X90L,tv,picture quality शानदार है,abc,Display,
`

func load(t *testing.T, opts csvsource.Options) *csvsource.Source {
	t.Helper()
	s, err := csvsource.Parse(strings.NewReader(dataset), opts)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return s
}

func TestParse_SkipsEmptyTextAndDefaults(t *testing.T) {
	s := load(t, csvsource.Options{})
	if s.Len() != 4 {
		t.Fatalf("Len = %d, want 4", s.Len())
	}

	res, err := s.Fetch(context.Background(), "sony")
	if err != nil || !res.Found || len(res.Reviews) != 1 {
		t.Fatalf("unexpected fetch: %+v err=%v", res, err)
	}
	rv := res.Reviews[0]
	if rv.Rating != nil {
		t.Fatalf("invalid rating should be nil, got %d", *rv.Rating)
	}
	if rv.Language != domain.LangRegional {
		t.Fatalf("empty language should default to regional, got %q", rv.Language)
	}
}

func TestFetch_PartialCaseInsensitive(t *testing.T) {
	s := load(t, csvsource.Options{})
	ctx := context.Background()

	res, _ := s.Fetch(ctx, "  IPHONE 15 ")
	if !res.Found || len(res.Reviews) != 2 {
		t.Fatalf("expected 2 iPhone reviews, got %+v", res)
	}
	if r := res.Reviews[1].Rating; r == nil || *r != 3 {
		t.Fatalf("comma rating should parse to 3, got %v", r)
	}
	if res.Reviews[1].Language != domain.LangMarathi {
		t.Fatalf("language = %q", res.Reviews[1].Language)
	}

	miss, err := s.Fetch(ctx, "Pixel 9")
	if err != nil || miss.Found || len(miss.Reviews) != 0 {
		t.Fatalf("expected not found, got %+v err=%v", miss, err)
	}
}

func TestParse_ScoreFromRating(t *testing.T) {
	s := load(t, csvsource.Options{ScoreFromRating: true})
	res, _ := s.Fetch(context.Background(), "iphone")
	got := res.Reviews[0].SentimentScore
	if got == nil || *got != 1.0 {
		t.Fatalf("5 stars should score 1.0, got %v", got)
	}
}

func TestCatalog(t *testing.T) {
	s := load(t, csvsource.Options{})
	ctx := context.Background()

	all, _ := s.Products(ctx, "")
	want := []string{"Samsung Galaxy S24", "Sony Bravia X90L", "iPhone 15 Pro"}
	if !reflect.DeepEqual(all, want) {
		t.Fatalf("Products = %v, want %v", all, want)
	}
	tvs, _ := s.Products(ctx, "tv")
	if !reflect.DeepEqual(tvs, []string{"Sony Bravia X90L"}) {
		t.Fatalf("Products(tv) = %v", tvs)
	}
	cats, _ := s.Categories(ctx)
	if !reflect.DeepEqual(cats, []string{"smartphone", "tv"}) {
		t.Fatalf("Categories = %v", cats)
	}
	found, _ := s.Search(ctx, "s", "smartphone")
	if !reflect.DeepEqual(found, []string{"Samsung Galaxy S24"}) {
		t.Fatalf("Search = %v", found)
	}
	if c, err := s.Category(ctx, "bravia"); err != nil || c != "tv" {
		t.Fatalf("Category = %q err=%v", c, err)
	}
	if _, err := s.Category(ctx, "nokia"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParse_HeaderAliasesAndMissingColumns(t *testing.T) {
	in := "\ufeffName,Review,Stars\nPixel 8,good,4\n"
	s, err := csvsource.Parse(strings.NewReader(in), csvsource.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	names, by := s.Grouped()
	if !reflect.DeepEqual(names, []string{"Pixel 8"}) || len(by["Pixel 8"]) != 1 {
		t.Fatalf("Grouped = %v %v", names, by)
	}

	if _, err := csvsource.Parse(strings.NewReader("product_name,rating\nx,4\n"), csvsource.Options{}); err == nil {
		t.Fatal("expected error without a text column")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := csvsource.Load(filepath.Join(t.TempDir(), "nope.csv"), csvsource.Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
