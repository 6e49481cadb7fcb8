package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/peptidestore/catalog"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

// SearchHandler serves universal search
type SearchHandler struct {
	service *catalog.SearchService
	log     *logger.Logger
}

// NewSearchHandler creates a search handler
func NewSearchHandler(service *catalog.SearchService, log *logger.Logger) *SearchHandler {
	return &SearchHandler{service: service, log: log.WithComponent("search")}
}

// Search answers GET /api/search?q=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	results, total, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		h.log.Error("search failed", "error", err, "query", c.Query("q"))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Search failed",
			"results": []models.SearchResult{},
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"total":   total,
	})
}
