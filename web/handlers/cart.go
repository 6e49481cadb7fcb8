package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/peptidestore/cart"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
	"github.com/peptidestore/warehouse"
	"github.com/peptidestore/web/middleware"
)

// CartHandler serves the session cart endpoints
type CartHandler struct {
	carts      *cart.Manager
	selections *warehouse.SelectionStore
	log        *logger.Logger
}

// NewCartHandler creates a cart handler
func NewCartHandler(carts *cart.Manager, selections *warehouse.SelectionStore, log *logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, selections: selections, log: log.WithComponent("cart-api")}
}

func (h *CartHandler) session(c *fiber.Ctx) *cart.Session {
	return h.carts.Session(middleware.SessionID(c))
}

// Get answers GET /api/cart
func (h *CartHandler) Get(c *fiber.Ctx) error {
	s := h.session(c)
	return c.JSON(fiber.Map{
		"items":             s.Store.Items(),
		"subtotal":          s.Store.Total(),
		"itemCount":         s.Store.ItemCount(),
		"selectedWarehouse": h.selections.Get(middleware.SessionID(c)),
	})
}

type addItemRequest struct {
	Product         models.Product   `json:"product"`
	Quantity        int              `json:"quantity"`
	VariantStrength string           `json:"variantStrength"`
	Warehouse       models.Warehouse `json:"warehouse"`
	Price           float64          `json:"price"`
}

// AddItem answers POST /api/cart/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Product.ID == "" {
		return badRequest(c, "Product is required")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if req.Warehouse == "" {
		// New additions default to the session's selected warehouse
		req.Warehouse = h.selections.Get(middleware.SessionID(c))
	}
	if !req.Warehouse.Valid() {
		return badRequest(c, "Unknown warehouse")
	}

	s := h.session(c)
	s.Store.AddItem(req.Product, req.Quantity, req.VariantStrength, req.Warehouse, req.Price)

	return c.JSON(fiber.Map{
		"items":     s.Store.Items(),
		"subtotal":  s.Store.Total(),
		"itemCount": s.Store.ItemCount(),
	})
}

type quantityRequest struct {
	ProductID       string `json:"productId"`
	VariantStrength string `json:"variantStrength"`
	Quantity        int    `json:"quantity"`
}

// UpdateQuantity answers PUT /api/cart/items/quantity
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ProductID == "" {
		return badRequest(c, "Product id is required")
	}

	s := h.session(c)
	s.Store.UpdateQuantity(req.ProductID, req.VariantStrength, req.Quantity)

	return c.JSON(fiber.Map{
		"items":     s.Store.Items(),
		"subtotal":  s.Store.Total(),
		"itemCount": s.Store.ItemCount(),
	})
}

type switchWarehouseRequest struct {
	ProductID       string           `json:"productId"`
	VariantStrength string           `json:"variantStrength"`
	Warehouse       models.Warehouse `json:"warehouse"`
}

// UpdateWarehouse answers PUT /api/cart/items/warehouse
func (h *CartHandler) UpdateWarehouse(c *fiber.Ctx) error {
	var req switchWarehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ProductID == "" {
		return badRequest(c, "Product id is required")
	}
	if !req.Warehouse.Valid() {
		return badRequest(c, "Unknown warehouse")
	}

	s := h.session(c)
	err := s.Store.UpdateWarehouse(c.UserContext(), req.ProductID, req.VariantStrength, req.Warehouse)
	if errors.Is(err, cart.ErrPriceUnresolved) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Could not price this item from the selected warehouse",
		})
	}
	if err != nil {
		h.log.Error("warehouse switch failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update warehouse",
		})
	}

	return c.JSON(fiber.Map{
		"items":    s.Store.Items(),
		"subtotal": s.Store.Total(),
	})
}

// RemoveItem answers DELETE /api/cart/items. The variantStrength match
// is exact: omitting it removes only strength-less lines.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	productID := c.Query("productId")
	if productID == "" {
		return badRequest(c, "Product id is required")
	}

	s := h.session(c)
	s.Store.RemoveItem(productID, c.Query("variantStrength"))

	return c.JSON(fiber.Map{
		"items":     s.Store.Items(),
		"subtotal":  s.Store.Total(),
		"itemCount": s.Store.ItemCount(),
	})
}

// Clear answers DELETE /api/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	s := h.session(c)
	s.Store.Clear()
	return c.JSON(fiber.Map{
		"items":     s.Store.Items(),
		"subtotal":  0,
		"itemCount": 0,
	})
}

// Validate answers GET /api/cart/validate: it runs a reconciliation
// pass, applies corrected prices back into the cart, and returns the
// validation set. An empty set with a non-empty error means the catalog
// was unreachable; callers keep the existing cart prices.
func (h *CartHandler) Validate(c *fiber.Ctx) error {
	s := h.session(c)
	validations := s.Refresher.RefreshNow(c.UserContext())

	return c.JSON(fiber.Map{
		"validations": validations,
		"loading":     s.Reconciler.Loading(),
		"error":       s.Reconciler.LastError(),
		"items":       s.Store.Items(),
		"subtotal":    s.Store.Total(),
	})
}

// GetWarehouse answers GET /api/warehouse
func (h *CartHandler) GetWarehouse(c *fiber.Ctx) error {
	selected := h.selections.Get(middleware.SessionID(c))
	description := warehouse.DescriptionFor(selected)
	return c.JSON(fiber.Map{
		"selectedWarehouse": selected,
		"description":       description,
	})
}

type selectWarehouseRequest struct {
	Warehouse models.Warehouse `json:"warehouse"`
}

// SetWarehouse answers PUT /api/warehouse
func (h *CartHandler) SetWarehouse(c *fiber.Ctx) error {
	var req selectWarehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !req.Warehouse.Valid() {
		return badRequest(c, "Unknown warehouse")
	}

	sid := middleware.SessionID(c)
	if err := h.selections.Set(sid, req.Warehouse); err != nil {
		h.log.Error("failed to persist warehouse selection", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save warehouse selection",
		})
	}

	return c.JSON(fiber.Map{
		"selectedWarehouse": req.Warehouse,
		"description":       warehouse.DescriptionFor(req.Warehouse),
	})
}
