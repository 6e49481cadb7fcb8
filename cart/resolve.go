package cart

import (
	"strings"

	"github.com/peptidestore/models"
)

// The fallback chains below are kept as explicit ordered strategy
// lists so the resolution order stays auditable and testable on its own.

// basePriceStrategy attempts to resolve a unit base price (before the
// warehouse multiplier) from a product snapshot
type basePriceStrategy struct {
	name    string
	resolve func(p *models.Product, strength string) (float64, bool)
}

var basePriceStrategies = []basePriceStrategy{
	{
		name: "variant-match",
		resolve: func(p *models.Product, strength string) (float64, bool) {
			if strength == "" {
				return 0, false
			}
			if v := p.FindVariant(strength); v != nil {
				return v.Price, true
			}
			return 0, false
		},
	},
	{
		name: "first-variant",
		resolve: func(p *models.Product, _ string) (float64, bool) {
			if len(p.Variants) == 0 {
				return 0, false
			}
			return p.Variants[0].Price, true
		},
	},
	{
		name: "legacy-price",
		resolve: func(p *models.Product, _ string) (float64, bool) {
			if p.Price == nil {
				return 0, false
			}
			return *p.Price, true
		},
	},
}

// ResolveBasePrice walks the price fallback chain: exact variant match,
// then first variant, then the legacy scalar price. The chain is
// structural, not value-based: a matched variant wins even when its
// price is broken, so bad catalog data surfaces instead of being
// papered over. Returns the winning strategy name for logging.
func ResolveBasePrice(p *models.Product, strength string) (float64, string, bool) {
	for _, s := range basePriceStrategies {
		if price, ok := s.resolve(p, strength); ok {
			return price, s.name, true
		}
	}
	return 0, "", false
}

// productStrategy attempts to resolve a cart line's product against the
// fresh catalog
type productStrategy struct {
	name    string
	resolve func(products []models.Product, item *models.CartItem) *models.Product
}

var productStrategies = []productStrategy{
	{
		name: "slug",
		resolve: func(products []models.Product, item *models.CartItem) *models.Product {
			for i := range products {
				if products[i].Slug == item.Product.Slug {
					return &products[i]
				}
			}
			return nil
		},
	},
	{
		name: "id",
		resolve: func(products []models.Product, item *models.CartItem) *models.Product {
			for i := range products {
				if products[i].ID == item.Product.ID {
					return &products[i]
				}
			}
			return nil
		},
	},
	{
		name: "fuzzy-name",
		resolve: func(products []models.Product, item *models.CartItem) *models.Product {
			name := strings.ToLower(strings.TrimSpace(item.Product.Name))
			if name == "" {
				return nil
			}
			for i := range products {
				candidate := strings.ToLower(products[i].Name)
				if candidate == name ||
					strings.Contains(candidate, name) ||
					strings.Contains(name, candidate) {
					return &products[i]
				}
			}
			return nil
		},
	},
}

// ResolveProduct resolves a cart line against the fresh catalog: exact
// slug match, then id match, then a case-insensitive/substring name
// match. Returns nil when every strategy misses.
func ResolveProduct(products []models.Product, item *models.CartItem) *models.Product {
	for _, s := range productStrategies {
		if p := s.resolve(products, item); p != nil {
			return p
		}
	}
	return nil
}

// ResolveVariant resolves a strength against a fresh product's variant
// list: exact match, then case-insensitive/trimmed match, then the
// catalog's first variant as a fallback. The second return reports
// whether the first-variant fallback was taken; nil means the product
// has no variants at all.
func ResolveVariant(p *models.Product, strength string) (*models.Variant, bool) {
	if v := p.FindVariant(strength); v != nil {
		return v, false
	}
	want := strings.ToLower(strings.TrimSpace(strength))
	for i := range p.Variants {
		if strings.ToLower(strings.TrimSpace(p.Variants[i].Strength)) == want {
			return &p.Variants[i], false
		}
	}
	if len(p.Variants) > 0 {
		return &p.Variants[0], true
	}
	return nil, false
}
