package domain

type Language string

const (
	LangHindi    Language = "hindi"
	LangMarathi  Language = "marathi"
	LangEnglish  Language = "english"
	LangRegional Language = "regional"
)

// Review is one raw review record as handed over by a ReviewSource.
// Either Rating or SentimentScore may be absent.
type Review struct {
	ID             int64    `json:"-"`
	Product        string   `json:"product,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Text           string   `json:"text"`
	Rating         *int     `json:"rating"`                   // 1..5
	SentimentScore *float64 `json:"sentimentScore,omitempty"` // 0..1
	Aspect         *string  `json:"aspect,omitempty"`         // dataset label, informational only
	Language       Language `json:"language"`
	Source         *string  `json:"source,omitempty"`
	SourceID       *string  `json:"-"`
}

// Lang returns the review language, "regional" when the record carries none.
func (r Review) Lang() Language {
	if r.Language == "" {
		return LangRegional
	}
	return r.Language
}
