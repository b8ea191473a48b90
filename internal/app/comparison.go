package app

import (
	"math"
	"sort"

	"review_compare/internal/aspects"
	"review_compare/internal/domain"
)

// DefaultAspect is the only row when no product has any aspect.
const DefaultAspect = "Overall"

// BuildComparison assembles the cross-product view. analyses holds an entry
// only for products that had reviews; everything else is reported as not found.
func BuildComparison(products []string, analyses map[string]domain.AnalysisResult) domain.ComparisonResult {
	c := domain.Comparison{
		Overall:       make([]domain.OverallEntry, 0, len(products)),
		Reviews:       make(map[string][]domain.SampleReview, len(products)),
		Strengths:     make(map[string][]string, len(products)),
		Weaknesses:    make(map[string][]string, len(products)),
		ReviewsFound:  make(map[string]bool, len(products)),
		LanguageStats: make(map[string]map[domain.Language]int, len(products)),
		Winner:        domain.NoDataWinner,
	}

	for _, p := range products {
		a, ok := lookup(analyses, p)
		if !ok {
			c.Overall = append(c.Overall, domain.OverallEntry{Name: p, Score: 0, Sentiment: domain.SentimentUnknown})
			c.ReviewsFound[p] = false
			c.Reviews[p] = []domain.SampleReview{}
			c.Strengths[p] = []string{}
			c.Weaknesses[p] = []string{}
			c.LanguageStats[p] = map[domain.Language]int{domain.LangHindi: 0, domain.LangMarathi: 0}
			continue
		}
		c.Overall = append(c.Overall, domain.OverallEntry{Name: p, Score: a.OverallScore, Sentiment: a.OverallSentiment})
		c.ReviewsFound[p] = true
		c.Reviews[p] = a.SampleReviews
		c.Strengths[p] = a.Strengths
		c.Weaknesses[p] = a.Weaknesses
		c.LanguageStats[p] = a.LanguageStats
	}

	for _, asp := range aspectUnion(products, analyses) {
		row := domain.AspectRow{Aspect: asp, Products: products, Scores: make([]int, len(products))}
		for i, p := range products {
			row.Scores[i] = cell(analyses, p, asp)
		}
		c.Aspects = append(c.Aspects, row)
	}
	c.RadarData = c.Aspects

	best := 0.0
	for _, o := range c.Overall {
		if o.Score > 0 && o.Score > best {
			best, c.Winner = o.Score, o.Name
		}
	}

	return domain.ComparisonResult{Products: products, Comparison: c}
}

func lookup(analyses map[string]domain.AnalysisResult, p string) (domain.AnalysisResult, bool) {
	a, ok := analyses[p]
	if !ok || a.TotalReviews == 0 {
		return domain.AnalysisResult{}, false
	}
	return a, true
}

func aspectUnion(products []string, analyses map[string]domain.AnalysisResult) []string {
	set := map[string]struct{}{}
	for _, p := range products {
		if a, ok := lookup(analyses, p); ok {
			for asp := range a.AspectScores {
				set[asp] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return []string{DefaultAspect}
	}
	out := make([]string, 0, len(set))
	for asp := range set {
		out = append(out, asp)
	}
	sort.Strings(out)
	return out
}

// cell applies the default ladder: own score, then the overall score for the
// overall row, then neutral for an analyzed product, then zero.
func cell(analyses map[string]domain.AnalysisResult, product, aspect string) int {
	a, ok := lookup(analyses, product)
	if !ok {
		return 0
	}
	if v, ok := a.AspectScores[aspect]; ok {
		return v
	}
	if aspect == aspects.Overall || aspect == DefaultAspect {
		return int(math.Round(a.OverallScore * 10))
	}
	return neutralAspect
}
