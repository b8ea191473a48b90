// Package sentiment provides the review scorers: a keyword rule scorer and a
// model-backed scorer that falls back to the rules when the model fails.
package sentiment

import (
	"context"
	"strings"

	"review_compare/internal/textutil"
)

const (
	PositiveScore = 0.8
	NegativeScore = 0.2
	NeutralScore  = 0.5
)

var (
	defaultPositive = []string{
		"बढ़िया", "अच्छा", "शानदार", "बेहतरीन", "जबरदस्त", "उत्तम",
		"छान", "सुंदर", "perfect", "best", "good", "great", "excellent",
	}
	defaultNegative = []string{
		"खराब", "बुरा", "कम", "नहीं", "not", "bad", "poor", "waste",
		"वाया", "गयाचा",
	}
)

// Rules scores text by counting which positive and negative keywords occur.
type Rules struct {
	positive []string
	negative []string
}

func NewRules() *Rules { return NewRulesWith(defaultPositive, defaultNegative) }

func NewRulesWith(positive, negative []string) *Rules {
	return &Rules{positive: foldAll(positive), negative: foldAll(negative)}
}

// Score is 0.8 when more positive than negative keywords occur, 0.2 for the
// reverse and 0.5 on a tie. Each keyword counts at most once.
func (r *Rules) Score(_ context.Context, text string) float64 {
	folded := textutil.Fold(text)
	pos, neg := hits(folded, r.positive), hits(folded, r.negative)
	switch {
	case pos > neg:
		return PositiveScore
	case neg > pos:
		return NegativeScore
	default:
		return NeutralScore
	}
}

func hits(folded string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(folded, w) {
			n++
		}
	}
	return n
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, w := range in {
		if f := textutil.Fold(strings.TrimSpace(w)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
