package app

import (
	"context"
	"math"
	"sort"

	"review_compare/internal/aspects"
	"review_compare/internal/domain"
)

const (
	sampleWindow  = 15
	maxSamples    = 5
	maxHighlights = 3
	neutralAspect = 50

	positiveAbove = 6.0
	neutralAbove  = 4.0
)

// An aspect is a strength above StrengthCutoff and a weakness below
// WeaknessCutoff, both on the 0..100 aspect scale.
const (
	StrengthCutoff = 65
	WeaknessCutoff = 55
)

const (
	NoStrengths  = "Overall Performance"
	NoWeaknesses = "No major weaknesses"
)

// Analyzer turns one product's reviews into an AnalysisResult.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	extractor domain.AspectExtractor
	scorer    domain.SentimentScorer
}

func NewAnalyzer(e domain.AspectExtractor, s domain.SentimentScorer) *Analyzer {
	return &Analyzer{extractor: e, scorer: s}
}

// Analyze is deterministic for a deterministic scorer. Reviews that carry a
// precomputed SentimentScore skip the scorer.
func (a *Analyzer) Analyze(ctx context.Context, product string, reviews []domain.Review) domain.AnalysisResult {
	out := domain.EmptyAnalysis(product)
	if len(reviews) == 0 {
		return out
	}

	tags := make([][]string, len(reviews))
	buckets := map[string][]float64{}
	var order []string // aspects in first-seen order
	sum := 0.0
	for i, rv := range reviews {
		score := a.score(ctx, rv)
		sum += score
		tags[i] = a.extractor.Extract(rv.Text)
		for _, asp := range tags[i] {
			if _, ok := buckets[asp]; !ok {
				order = append(order, asp)
			}
			buckets[asp] = append(buckets[asp], score)
		}
	}

	out.TotalReviews = len(reviews)
	out.OverallScore = math.Round(sum/float64(len(reviews))*10*10) / 10
	out.OverallSentiment = sentimentFor(out.OverallScore)

	for _, asp := range order {
		out.AspectScores[asp] = aspectScore(buckets[asp])
	}
	out.Strengths, out.Weaknesses = highlights(order, out.AspectScores)
	out.SampleReviews = samples(reviews, tags)
	out.LanguageStats = languageStats(reviews)
	return out
}

func (a *Analyzer) score(ctx context.Context, rv domain.Review) float64 {
	var s float64
	if rv.SentimentScore != nil {
		s = *rv.SentimentScore
	} else {
		s = a.scorer.Score(ctx, rv.Text)
	}
	switch {
	case math.IsNaN(s):
		return 0.5
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

func sentimentFor(score float64) domain.Sentiment {
	switch {
	case score > positiveAbove:
		return domain.SentimentPositive
	case score > neutralAbove:
		return domain.SentimentNeutral
	default:
		return domain.SentimentNegative
	}
}

func aspectScore(scores []float64) int {
	if len(scores) == 0 {
		return neutralAspect
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(sum / float64(len(scores)) * 100))
}

// highlights ranks the real aspects best first; ties keep first-seen order.
// Strengths come from the head of that ranking, weaknesses from its tail,
// reported worst first.
func highlights(order []string, scores map[string]int) (strengths, weaknesses []string) {
	ranked := make([]string, 0, len(order))
	for _, asp := range order {
		if asp != aspects.Overall {
			ranked = append(ranked, asp)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return scores[ranked[i]] > scores[ranked[j]] })
	for _, asp := range ranked {
		if len(strengths) == maxHighlights {
			break
		}
		if scores[asp] > StrengthCutoff {
			strengths = append(strengths, asp)
		}
	}

	tail := ranked[max(0, len(ranked)-maxHighlights):]
	for i := len(tail) - 1; i >= 0; i-- {
		if scores[tail[i]] < WeaknessCutoff {
			weaknesses = append(weaknesses, tail[i])
		}
	}

	if len(strengths) == 0 {
		strengths = []string{NoStrengths}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{NoWeaknesses}
	}
	return strengths, weaknesses
}

// samples prefers reviews that add aspect coverage, then backfills from the head.
func samples(reviews []domain.Review, tags [][]string) []domain.SampleReview {
	out := make([]domain.SampleReview, 0, maxSamples)
	covered := map[string]bool{}
	picked := map[string]bool{}

	for i := 0; i < len(reviews) && i < sampleWindow && len(out) < maxSamples; i++ {
		novel := false
		for _, asp := range tags[i] {
			if !covered[asp] {
				novel = true
				covered[asp] = true
			}
		}
		if novel {
			out = append(out, sample(reviews[i], tags[i]))
			picked[reviews[i].Text] = true
		}
	}

	for i := 0; i < len(reviews) && i < maxSamples && len(out) < maxSamples; i++ {
		if picked[reviews[i].Text] {
			continue
		}
		out = append(out, sample(reviews[i], tags[i]))
		picked[reviews[i].Text] = true
	}
	return out
}

// sample reports the first extracted aspect; the dataset label rides along
// separately and never replaces it.
func sample(rv domain.Review, tags []string) domain.SampleReview {
	out := domain.SampleReview{Text: rv.Text, Rating: rv.Rating, Aspect: tags[0], Language: rv.Lang()}
	if rv.Aspect != nil {
		out.Label = *rv.Aspect
	}
	return out
}

func languageStats(reviews []domain.Review) map[domain.Language]int {
	stats := map[domain.Language]int{domain.LangHindi: 0, domain.LangMarathi: 0}
	for _, rv := range reviews {
		stats[rv.Lang()]++
	}
	return stats
}
