package models

import "time"

// CartItem is one cart line. Identity for merging is the triple
// (Product.ID, VariantStrength, Warehouse). Product is a full snapshot
// taken at add time, not a live reference; CalculatedPrice is the cached
// variant price × warehouse multiplier from when it was last computed.
// Both can go stale until a reconciliation pass refreshes them, which is
// what LastVerifiedAt tracks.
type CartItem struct {
	Product         Product   `json:"product"`
	VariantStrength string    `json:"variantStrength,omitempty"`
	Quantity        int       `json:"quantity"`
	Warehouse       Warehouse `json:"warehouse"`
	CalculatedPrice float64   `json:"calculatedPrice"`
	LastVerifiedAt  time.Time `json:"lastVerifiedAt,omitempty"`
}

// Matches reports whether the line has the given identity triple
func (i *CartItem) Matches(productID, variantStrength string, warehouse Warehouse) bool {
	return i.Product.ID == productID &&
		i.VariantStrength == variantStrength &&
		i.Warehouse == warehouse
}

// CartItemValidation is the per-line result of one reconciliation pass.
// It is never persisted and never merged with prior results: each pass
// fully replaces the validation set. UpdatedProduct and UpdatedPrice are
// populated whenever the product resolved against the live catalog,
// regardless of validity, so price corrections can be applied even to
// partially invalid lines.
type CartItemValidation struct {
	Item           CartItem `json:"item"`
	IsValid        bool     `json:"isValid"`
	Errors         []string `json:"errors"`
	UpdatedProduct *Product `json:"updatedProduct,omitempty"`
	UpdatedPrice   float64  `json:"updatedPrice,omitempty"`
}
