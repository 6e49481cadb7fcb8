package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peptidestore/cart"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
	"github.com/peptidestore/web/middleware"
)

// Order pricing constants
const (
	baseShippingFee = 15.00
	// Expedited U.S. re-test handling fee, charged once when any line
	// ships from the US warehouse
	expeditedUSFee = 25.00
)

// CheckoutBackend persists checkout drafts and order receipts
type CheckoutBackend interface {
	Get(key string, out any) (bool, error)
	Put(key string, value any) error
	Delete(key string) error
}

// CheckoutHandler serves the checkout flow
type CheckoutHandler struct {
	carts        *cart.Manager
	backend      CheckoutBackend
	paymentDelay time.Duration
	log          *logger.Logger
}

// NewCheckoutHandler creates a checkout handler
func NewCheckoutHandler(carts *cart.Manager, backend CheckoutBackend, paymentDelay time.Duration, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:        carts,
		backend:      backend,
		paymentDelay: paymentDelay,
		log:          log.WithComponent("checkout"),
	}
}

func formKey(sid string) string  { return "checkoutFormData:" + sid }
func orderKey(sid string) string { return "lastOrder:" + sid }

// SaveForm answers PUT /api/checkout/form: persists the shipping draft
func (h *CheckoutHandler) SaveForm(c *fiber.Ctx) error {
	var form models.ShippingDetails
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.backend.Put(formKey(middleware.SessionID(c)), form); err != nil {
		h.log.Error("failed to save checkout form", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save checkout form",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetForm answers GET /api/checkout/form
func (h *CheckoutHandler) GetForm(c *fiber.Ctx) error {
	var form models.ShippingDetails
	found, err := h.backend.Get(formKey(middleware.SessionID(c)), &form)
	if err != nil {
		h.log.Error("failed to load checkout form", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not load checkout form",
		})
	}
	if !found {
		return c.JSON(fiber.Map{"form": nil})
	}
	return c.JSON(fiber.Map{"form": form})
}

type checkoutRequest struct {
	Shipping      models.ShippingDetails `json:"shipping"`
	AgreedToTerms bool                   `json:"agreedToTerms"`
}

// Submit answers POST /api/checkout. Submission is hard-blocked when
// any cart line fails reconciliation against the live catalog; the
// aggregated errors and a pointer back to the cart are returned instead
// of an order.
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateShipping(&req.Shipping); msg != "" {
		return badRequest(c, msg)
	}
	if !req.AgreedToTerms {
		return badRequest(c, "You must agree to the Research Use Only terms")
	}

	sid := middleware.SessionID(c)
	s := h.carts.Session(sid)
	if len(s.Store.Items()) == 0 {
		return badRequest(c, "Your cart is empty")
	}

	// Revalidate against the live catalog; corrected prices are applied
	// into the cart before totals are computed
	validations := s.Refresher.RefreshNow(c.UserContext())
	if blocked, details := invalidLines(validations); blocked {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":            "Some items in your cart are no longer valid",
			"validationErrors": details,
			"cartUrl":          "/cart",
		})
	}

	// Simulated payment processing; real payments are out of scope
	if h.paymentDelay > 0 {
		time.Sleep(h.paymentDelay)
	}

	items := s.Store.Items()
	subtotal := s.Store.Total()
	expedited := 0.0
	for _, item := range items {
		if item.Warehouse == models.WarehouseUS {
			expedited = expeditedUSFee
			break
		}
	}

	order := models.Order{
		OrderID:      fmt.Sprintf("ORD-%d", time.Now().UnixMilli()),
		Items:        items,
		Shipping:     req.Shipping,
		Subtotal:     subtotal,
		ShippingFee:  baseShippingFee,
		ExpeditedFee: expedited,
		Total:        subtotal + baseShippingFee + expedited,
		Date:         time.Now(),
	}

	if err := h.backend.Put(orderKey(sid), order); err != nil {
		h.log.Error("failed to persist order receipt", "error", err, "order", order.OrderID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete your order, please try again",
		})
	}

	s.Store.Clear()
	if err := h.backend.Delete(formKey(sid)); err != nil {
		h.log.Warn("failed to clear checkout draft", "error", err)
	}

	h.log.Info("order placed", "order", order.OrderID, "total", order.Total, "lines", len(items))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": order})
}

// LastOrder answers GET /api/orders/last for the confirmation page
func (h *CheckoutHandler) LastOrder(c *fiber.Ctx) error {
	var order models.Order
	found, err := h.backend.Get(orderKey(middleware.SessionID(c)), &order)
	if err != nil {
		h.log.Error("failed to load order receipt", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not load order",
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No order found",
		})
	}
	return c.JSON(fiber.Map{"order": order})
}

func validateShipping(s *models.ShippingDetails) string {
	switch {
	case strings.TrimSpace(s.FirstName) == "":
		return "First name is required"
	case strings.TrimSpace(s.LastName) == "":
		return "Last name is required"
	case strings.TrimSpace(s.Email) == "":
		return "Email is required"
	case !emailPattern.MatchString(s.Email):
		return "Invalid email address"
	case strings.TrimSpace(s.Phone) == "":
		return "Phone number is required"
	case strings.TrimSpace(s.Address) == "":
		return "Address is required"
	case strings.TrimSpace(s.City) == "":
		return "City is required"
	case strings.TrimSpace(s.State) == "":
		return "State is required"
	case strings.TrimSpace(s.ZipCode) == "":
		return "Zip code is required"
	}
	return ""
}

// invalidLines aggregates the blocking errors of a validation set
func invalidLines(validations []models.CartItemValidation) (bool, []fiber.Map) {
	var details []fiber.Map
	for i := range validations {
		v := &validations[i]
		if v.IsValid {
			continue
		}
		details = append(details, fiber.Map{
			"productId":       v.Item.Product.ID,
			"productName":     v.Item.Product.Name,
			"variantStrength": v.Item.VariantStrength,
			"errors":          v.Errors,
		})
	}
	return len(details) > 0, details
}
