package domain

// ProductView is an analysis plus catalog metadata for one product.
type ProductView struct {
	Category string `json:"category"`
	AnalysisResult
}

// AspectExplanation lists the review sentences that mention an aspect.
type AspectExplanation struct {
	Product   string   `json:"product"`
	Aspect    string   `json:"aspect"`
	Sentences []string `json:"sentences"`
	Reviews   int      `json:"reviewsMentioning"`
}

type Stats struct {
	TotalProducts      int            `json:"total_products"`
	Categories         []string       `json:"categories"`
	ProductsByCategory map[string]int `json:"products_by_category"`
}

type Health struct {
	Status        string   `json:"status"`
	Version       string   `json:"version"`
	DataSource    string   `json:"data_source"`
	TotalProducts int      `json:"total_products"`
	Categories    []string `json:"categories"`
}
