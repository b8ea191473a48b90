package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

/********** alias registry (single source of truth) **********/

var reviewAliases = map[string][]string{
	"text":      {"text", "review_text", "review", "comment", "content", "body", "message"},
	"lang":      {"language", "lang", "language_code", "languageCode", "locale"},
	"aspect":    {"aspect", "feature", "topic"},
	"source":    {"source", "platform", "provider", "site", "origin"},
	"source_id": {"id", "review_id", "reviewId", "source_id"},
	"rating":    {"rating", "rate", "stars", "rating.value", "scores.overall"},
	"sentiment": {"sentiment_score", "sentimentScore", "sentiment"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string (or integral number) at path, or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) *string {
	for _, p := range reviewAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "4,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

/********** reviews mapper **********/

// mapReviews converts loosely shaped JSON records into reviews for product.
// Records without text are dropped; a rating outside 1..5 is ignored.
func mapReviews(product string, in []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		text := textutil.Normalize(deref(firstNonEmptyAlias(r, "text")))
		if text == "" {
			continue
		}
		rv := domain.Review{
			Product:  product,
			Text:     text,
			Language: textutil.ParseLanguage(deref(firstNonEmptyAlias(r, "lang"))),
			Aspect:   firstNonEmptyAlias(r, "aspect"),
			Source:   firstNonEmptyAlias(r, "source"),
			SourceID: firstNonEmptyAlias(r, "source_id"),
		}
		if rv.Language == domain.LangRegional {
			// unlabeled records: fall back to script detection
			if lbl := firstNonEmptyAlias(r, "lang"); lbl == nil {
				rv.Language = textutil.DetectLanguage(text, deref(rv.Source))
			}
		}
		if f := getFloatFlexible(r, reviewAliases["rating"]...); f != nil && *f >= 1 && *f <= 5 {
			n := int(*f)
			rv.Rating = &n
		}
		if f := getFloatFlexible(r, reviewAliases["sentiment"]...); f != nil && *f >= 0 && *f <= 1 {
			rv.SentimentScore = f
		}
		out = append(out, rv)
	}
	return out
}

// reviewSourceID synthesizes a stable identity for reviews that carry none.
func reviewSourceID(rv domain.Review) string {
	rating := ""
	if rv.Rating != nil {
		rating = fmt.Sprintf("%d", *rv.Rating)
	}
	sig := strings.Join([]string{rv.Text, string(rv.Lang()), deref(rv.Aspect), deref(rv.Source), rating}, "|")
	sum := sha1.Sum([]byte(sig))
	return hex.EncodeToString(sum[:])
}
