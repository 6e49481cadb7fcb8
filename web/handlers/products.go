package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peptidestore/catalog"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

// ProductHandler serves the catalog endpoints
type ProductHandler struct {
	source catalog.Source
	log    *logger.Logger
}

// NewProductHandler creates a product handler over the catalog source
func NewProductHandler(source catalog.Source, log *logger.Logger) *ProductHandler {
	return &ProductHandler{source: source, log: log.WithComponent("products")}
}

// noStore marks a response as uncacheable: catalog consumers must
// always see fresh data on demand
func noStore(c *fiber.Ctx) {
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")
}

// List returns the full flat catalog
func (h *ProductHandler) List(c *fiber.Ctx) error {
	records, err := h.source.FetchAll(c.UserContext())
	if err != nil {
		h.log.Error("failed to fetch products", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch products",
		})
	}

	noStore(c)
	return c.JSON(models.CatalogResponse{
		Products:  records,
		Timestamp: time.Now(),
	})
}

// BySlug returns one adapted product aggregate
func (h *ProductHandler) BySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	records, err := h.source.FetchAll(c.UserContext())
	if err != nil {
		h.log.Error("failed to fetch products", "error", err, "slug", slug)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch products",
		})
	}

	product := catalog.FindBySlug(catalog.GroupRecords(records), slug)
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	}

	noStore(c)
	return c.JSON(fiber.Map{"product": product})
}

// ByCategory returns the adapted products of one category
func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	category := c.Params("category")

	records, err := h.source.FetchAll(c.UserContext())
	if err != nil {
		h.log.Error("failed to fetch products", "error", err, "category", category)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch products",
		})
	}

	products := catalog.FilterByCategory(catalog.GroupRecords(records), category)
	noStore(c)
	return c.JSON(fiber.Map{
		"products": products,
		"count":    len(products),
	})
}
