package models

import "time"

// VariantRecord is one flat row of the remote catalog: a single
// product-variant combination as the spreadsheet backend stores it.
// Records sharing a ProductSlug are grouped into one Product.
type VariantRecord struct {
	ProductID         string   `json:"productId"`
	ProductName       string   `json:"productName"`
	ProductSlug       string   `json:"productSlug"`
	VariantStrength   string   `json:"variantStrength"`
	Category          string   `json:"category"`
	PriceUSD          float64  `json:"priceUSD"`
	InStock           bool     `json:"inStock"`
	WarehouseLocation string   `json:"warehouseLocation"`
	SKUCode           string   `json:"skuCode"`
	ShortDescription  string   `json:"shortDescription"`
	FullDescription   string   `json:"fullDescription"`
	ImageURL          string   `json:"imageURL"`
	Specification     string   `json:"specification,omitempty"`
	Synonyms          []string `json:"synonyms,omitempty"`
	Featured          bool     `json:"featured"`
	PopularityScore   float64  `json:"popularityScore"`
	UnitSize          string   `json:"unitSize"`
	IsDiscontinued    bool     `json:"isDiscontinued"`
	RecordID          string   `json:"recordId"`
}

// CatalogResponse is the payload of GET /api/products
type CatalogResponse struct {
	Products  []VariantRecord `json:"products"`
	Timestamp time.Time       `json:"timestamp"`
}

// Warehouse location tags used by the remote catalog
const (
	LocationBoth     = "Both"
	LocationOverseas = "Overseas Warehouse"
	LocationUS       = "US Warehouse"
)
