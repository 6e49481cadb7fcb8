package catalog

import (
	"regexp"
	"strings"

	"github.com/peptidestore/models"
	"github.com/peptidestore/warehouse"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug derives a URL-friendly slug from a product name.
// Variant qualifiers in parentheses ("BPC-157 (5mg × 10 vials)") are
// stripped so every variant of a product lands on the same slug.
func GenerateSlug(productName string) string {
	if productName == "" {
		return ""
	}
	base := strings.TrimSpace(strings.SplitN(productName, "(", 2)[0])
	slug := slugCleaner.ReplaceAllString(strings.ToLower(base), "-")
	return strings.Trim(slug, "-")
}

// GroupRecords folds the flat variant records into Product aggregates,
// grouping by slug. A product whose only record carries no meaningful
// strength stays a legacy single-SKU product with scalar price fields.
// Record order within a group is preserved: the first record supplies
// the product metadata and the first-variant fallback.
func GroupRecords(records []models.VariantRecord) []models.Product {
	groups := make(map[string][]models.VariantRecord)
	var order []string

	for _, rec := range records {
		slug := rec.ProductSlug
		if slug == "" {
			slug = GenerateSlug(rec.ProductName)
		}
		if slug == "" {
			// A record we cannot identify cannot be sold
			continue
		}
		if _, seen := groups[slug]; !seen {
			order = append(order, slug)
		}
		groups[slug] = append(groups[slug], rec)
	}

	products := make([]models.Product, 0, len(groups))
	for _, slug := range order {
		products = append(products, buildProduct(slug, groups[slug]))
	}
	return products
}

func buildProduct(slug string, group []models.VariantRecord) models.Product {
	first := group[0]

	variants := make([]models.Variant, 0, len(group))
	for _, rec := range group {
		variants = append(variants, models.Variant{
			Strength:         rec.VariantStrength,
			QuantityPerOrder: 1,
			Price:            rec.PriceUSD,
			SKU:              rec.SKUCode,
			InStock:          rec.InStock,
			Specification:    rec.Specification,
		})
	}

	hasVariants := len(group) > 1 ||
		(len(group) == 1 && first.VariantStrength != "" && first.VariantStrength != "N/A")

	description := first.FullDescription
	if description == "" {
		description = first.ShortDescription
	}

	product := models.Product{
		ID:               slug,
		Slug:             slug,
		Name:             first.ProductName,
		Category:         first.Category,
		Description:      description,
		ShortDescription: first.ShortDescription,
		Image:            first.ImageURL,
		Synonyms:         first.Synonyms,
		WarehouseOptions: warehouseOptions(first.WarehouseLocation),
	}

	if hasVariants {
		product.Variants = variants
	} else {
		price := first.PriceUSD
		inStock := first.InStock
		product.Price = &price
		product.SKU = first.SKUCode
		product.InStock = &inStock
		product.Specification = first.Specification
	}

	return product
}

func warehouseOptions(location string) *models.WarehouseOptions {
	return &models.WarehouseOptions{
		Overseas: models.WarehouseOption{
			PriceMultiplier: 1.0,
			Description:     warehouse.DescriptionOverseas,
			Available:       location == models.LocationBoth || location == models.LocationOverseas,
		},
		US: models.WarehouseOption{
			PriceMultiplier: warehouse.USPriceMultiplier,
			Description:     warehouse.DescriptionUS,
			Available:       location == models.LocationBoth || location == models.LocationUS,
		},
	}
}

// FindBySlug returns the product with the given slug, or nil
func FindBySlug(products []models.Product, slug string) *models.Product {
	for i := range products {
		if products[i].Slug == slug {
			return &products[i]
		}
	}
	return nil
}

// FilterByCategory returns products in the given category,
// case-insensitively
func FilterByCategory(products []models.Product, category string) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}
