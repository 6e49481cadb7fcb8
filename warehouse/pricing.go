package warehouse

import "github.com/peptidestore/models"

// Tier descriptions shown alongside prices
const (
	DescriptionOverseas = "Shipped directly from our verified international partner facilities."
	DescriptionUS       = "Re-tested and quality-verified in U.S. laboratories prior to domestic shipment."
)

// USPriceMultiplier is the premium applied to the re-tested US tier
const USPriceMultiplier = 1.25

// DescriptionFor returns the user-facing description of a tier
func DescriptionFor(w models.Warehouse) string {
	if w == models.WarehouseUS {
		return DescriptionUS
	}
	return DescriptionOverseas
}

// Multiplier returns the price multiplier of the product's option for
// the given warehouse. Missing warehouse config degrades to the
// identity multiplier rather than erroring.
func Multiplier(product *models.Product, w models.Warehouse) float64 {
	if product == nil {
		return 1.0
	}
	opt := product.WarehouseOptions.Option(w)
	if opt == nil || opt.PriceMultiplier == 0 {
		return 1.0
	}
	return opt.PriceMultiplier
}

// PriceFor computes the displayed price for a base price shipped from
// the given warehouse. Pure and total: no failure mode.
func PriceFor(basePrice float64, product *models.Product, w models.Warehouse) float64 {
	return basePrice * Multiplier(product, w)
}

// Available reports whether the product may ship from the warehouse
func Available(product *models.Product, w models.Warehouse) bool {
	if product == nil {
		return false
	}
	opt := product.WarehouseOptions.Option(w)
	return opt != nil && opt.Available
}
