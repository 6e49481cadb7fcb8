package web

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/peptidestore/web/handlers"
	"github.com/peptidestore/web/middleware"
)

// Handlers bundles the wired handler set the server routes to
type Handlers struct {
	Products *handlers.ProductHandler
	Search   *handlers.SearchHandler
	Contact  *handlers.ContactHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
}

// Server represents the web server
type Server struct {
	app *fiber.App
}

// NewServer creates a new Fiber server over the wired handlers
func NewServer(h *Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName: "peptide storefront",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("ERROR [%s %s]: %v", c.Method(), c.Path(), err)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Session())

	setupRoutes(app, h)

	return &Server{app: app}
}

// App exposes the underlying Fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the server
func (s *Server) Start(port string) error {
	log.Printf("Server starting on http://localhost:%s", port)
	return s.app.Listen(":" + port)
}

// Shutdown gracefully shuts the server down
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, h *Handlers) {
	api := app.Group("/api")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Debug endpoint for SQL logs
	api.Get("/debug/sql", handlers.GetSQLLogs)
	api.Delete("/debug/sql", handlers.ClearSQLLogs)

	// Catalog - specific routes before /:slug
	products := api.Group("/products")
	products.Get("/", h.Products.List)
	products.Get("/category/:category", h.Products.ByCategory)
	products.Get("/:slug", h.Products.BySlug)

	// Universal search
	api.Get("/search", h.Search.Search)

	// Contact form
	api.Post("/contact", h.Contact.Submit)

	// Session cart
	cart := api.Group("/cart")
	cart.Get("/", h.Cart.Get)
	cart.Delete("/", h.Cart.Clear)
	cart.Post("/items", h.Cart.AddItem)
	cart.Delete("/items", h.Cart.RemoveItem)
	cart.Put("/items/quantity", h.Cart.UpdateQuantity)
	cart.Put("/items/warehouse", h.Cart.UpdateWarehouse)
	cart.Get("/validate", h.Cart.Validate)

	// Global warehouse selection
	api.Get("/warehouse", h.Cart.GetWarehouse)
	api.Put("/warehouse", h.Cart.SetWarehouse)

	// Checkout flow
	checkout := api.Group("/checkout")
	checkout.Get("/form", h.Checkout.GetForm)
	checkout.Put("/form", h.Checkout.SaveForm)
	checkout.Post("/", h.Checkout.Submit)

	api.Get("/orders/last", h.Checkout.LastOrder)
}
