package models

// Warehouse identifies a fulfillment-source tier
type Warehouse string

const (
	WarehouseOverseas Warehouse = "overseas"
	WarehouseUS       Warehouse = "us"
)

// Valid reports whether w is one of the two known warehouse keys
func (w Warehouse) Valid() bool {
	return w == WarehouseOverseas || w == WarehouseUS
}

// Label returns the user-facing warehouse name
func (w Warehouse) Label() string {
	if w == WarehouseUS {
		return "US"
	}
	return "Overseas"
}

// WarehouseOption describes how a product ships from one warehouse tier
type WarehouseOption struct {
	PriceMultiplier float64 `json:"priceMultiplier"`
	Description     string  `json:"description"`
	Available       bool    `json:"available"`
}

// WarehouseOptions holds the per-tier options of a product
type WarehouseOptions struct {
	Overseas WarehouseOption `json:"overseas"`
	US       WarehouseOption `json:"us"`
}

// Option returns the option for the given warehouse, or nil for an
// unknown key. Callers treat nil as "no warehouse config" and fall back
// to the identity multiplier.
func (o *WarehouseOptions) Option(w Warehouse) *WarehouseOption {
	if o == nil {
		return nil
	}
	switch w {
	case WarehouseOverseas:
		return &o.Overseas
	case WarehouseUS:
		return &o.US
	}
	return nil
}
