package handlers

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactBackend persists contact form submissions
type ContactBackend interface {
	SaveContact(sub *models.ContactSubmission) error
}

// ContactHandler serves the contact form endpoint
type ContactHandler struct {
	backend ContactBackend
	log     *logger.Logger
}

// NewContactHandler creates a contact handler
func NewContactHandler(backend ContactBackend, log *logger.Logger) *ContactHandler {
	return &ContactHandler{backend: backend, log: log.WithComponent("contact")}
}

type contactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// Submit answers POST /api/contact
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	switch {
	case req.FirstName == "":
		return badRequest(c, "First name is required")
	case req.Email == "":
		return badRequest(c, "Email is required")
	case !emailPattern.MatchString(req.Email):
		return badRequest(c, "Invalid email address")
	case req.Subject == "":
		return badRequest(c, "Subject is required")
	case req.Message == "":
		return badRequest(c, "Message is required")
	}

	sub := &models.ContactSubmission{
		FirstName: req.FirstName,
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	}
	if err := h.backend.SaveContact(sub); err != nil {
		h.log.Error("failed to save contact submission", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not submit your message, please try again",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Thank you for your message. We will get back to you shortly.",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
