package models

// SearchResultType discriminates product hits from article hits
type SearchResultType string

const (
	SearchTypeProduct SearchResultType = "product"
	SearchTypeArticle SearchResultType = "article"
)

// SearchResult is one entry of GET /api/search
type SearchResult struct {
	Type        SearchResultType `json:"type"`
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	URL         string           `json:"url"`
	Category    string           `json:"category,omitempty"`
	Price       *float64         `json:"price,omitempty"`
	Image       string           `json:"image,omitempty"`
}
