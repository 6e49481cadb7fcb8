package models

// Variant is a priced, stocked SKU of a product distinguished by strength
type Variant struct {
	Strength string `json:"strength"`
	// QuantityPerOrder is always 1: one cart quantity unit equals one
	// vial. Multi-vial packs are expressed through Price, never here.
	QuantityPerOrder int     `json:"quantityPerOrder"`
	Price            float64 `json:"price"`
	SKU              string  `json:"sku"`
	InStock          bool    `json:"inStock"`
	Specification    string  `json:"specification,omitempty"`
}

// Product is the catalog aggregate the storefront works with. Either
// Variants is a non-empty ordered list, or the legacy scalar fields
// (Price, SKU, InStock) describe a single implicit variant. Slug is the
// stable identity key across catalog refreshes.
type Product struct {
	ID               string            `json:"id"`
	Slug             string            `json:"slug"`
	Name             string            `json:"name"`
	Category         string            `json:"category"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"shortDescription"`
	Image            string            `json:"image"`
	Variants         []Variant         `json:"variants,omitempty"`
	Price            *float64          `json:"price,omitempty"`
	SKU              string            `json:"sku,omitempty"`
	InStock          *bool             `json:"inStock,omitempty"`
	Specification    string            `json:"specification,omitempty"`
	Synonyms         []string          `json:"synonyms,omitempty"`
	WarehouseOptions *WarehouseOptions `json:"warehouseOptions,omitempty"`
}

// HasVariants reports whether the product carries an explicit variant list
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FindVariant returns the variant with the exact strength, or nil
func (p *Product) FindVariant(strength string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Strength == strength {
			return &p.Variants[i]
		}
	}
	return nil
}

// BasePrice returns the legacy scalar price, or 0 when unset
func (p *Product) BasePrice() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}
