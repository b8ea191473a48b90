package domain

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentUnknown  Sentiment = "unknown"
)

type SampleReview struct {
	Text     string   `json:"text"`
	Rating   *int     `json:"rating"`
	Aspect   string   `json:"aspect"`          // first extracted aspect or "overall"
	Label    string   `json:"label,omitempty"` // dataset aspect label, if any
	Language Language `json:"language"`
}

// AnalysisResult is the per-product outcome of analyzing its review set.
type AnalysisResult struct {
	Product          string           `json:"product"`
	OverallScore     float64          `json:"overallScore"` // 0..10
	OverallSentiment Sentiment        `json:"overallSentiment"`
	AspectScores     map[string]int   `json:"aspectScores"` // 0..100
	SampleReviews    []SampleReview   `json:"sampleReviews"`
	Strengths        []string         `json:"strengths"`
	Weaknesses       []string         `json:"weaknesses"`
	TotalReviews     int              `json:"totalReviews"`
	LanguageStats    map[Language]int `json:"languageStats"`
}

// EmptyAnalysis is the "no data" result for a product without reviews.
func EmptyAnalysis(product string) AnalysisResult {
	return AnalysisResult{
		Product:          product,
		OverallSentiment: SentimentUnknown,
		AspectScores:     map[string]int{},
		SampleReviews:    []SampleReview{},
		Strengths:        []string{},
		Weaknesses:       []string{},
		LanguageStats:    map[Language]int{},
	}
}
