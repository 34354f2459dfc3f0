package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/synthvault/synthvault/internal/middleware"
	"github.com/synthvault/synthvault/internal/oracle"
)

// RegisterOracleReadRoutes wires the public oracle reads. Must be registered
// before the auth middleware group so they stay unauthenticated.
func RegisterOracleReadRoutes(r fiber.Router, h *oracle.Handler) {
	group := r.Group("/oracle")
	group.Get("/price", h.Price)
	group.Get("/history", h.History)
}

// RegisterOracleAdminRoutes wires the authority-gated oracle operations.
func RegisterOracleAdminRoutes(r fiber.Router, h *oracle.Handler) {
	group := r.Group("/oracle")
	group.Post("/initialize", h.Initialize(middleware.CallerID))
	group.Post("/price", h.UpdatePrice(middleware.CallerID))
}
