package domain

import (
	"bytes"
	"encoding/json"
)

// NoDataWinner is reported as winner when no product has a positive score.
const NoDataWinner = "No data found"

type OverallEntry struct {
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Sentiment Sentiment `json:"sentiment"`
}

// AspectColumn is the key naming the aspect in a marshalled AspectRow, so no
// product may be called exactly this.
const AspectColumn = "aspect"

// AspectRow holds one aspect's score per requested product, in request order.
// It marshals to a flat object: {"aspect": "Camera", "<product1>": 80, ...}.
type AspectRow struct {
	Aspect   string
	Products []string
	Scores   []int
}

// Score returns the cell for product, or -1 when the product is not in the row.
func (r AspectRow) Score(product string) int {
	for i, p := range r.Products {
		if p == product {
			return r.Scores[i]
		}
	}
	return -1
}

func (r AspectRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"aspect":`)
	b, err := json.Marshal(r.Aspect)
	if err != nil {
		return nil, err
	}
	buf.Write(b)
	for i, p := range r.Products {
		if p == AspectColumn {
			continue // rejected by CompareService
		}
		k, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		v, _ := json.Marshal(r.Scores[i])
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Comparison struct {
	Overall       []OverallEntry              `json:"overall"`
	Aspects       []AspectRow                 `json:"aspects"`
	RadarData     []AspectRow                 `json:"radarData"`
	Reviews       map[string][]SampleReview   `json:"reviews"`
	Strengths     map[string][]string         `json:"strengths"`
	Weaknesses    map[string][]string         `json:"weaknesses"`
	ReviewsFound  map[string]bool             `json:"reviewsFound"`
	LanguageStats map[string]map[Language]int `json:"languageStats"`
	Winner        string                      `json:"winner"`
}

type ComparisonResult struct {
	Products   []string   `json:"products"`
	Comparison Comparison `json:"comparison"`
}
