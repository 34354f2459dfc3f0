package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/synthvault/synthvault/internal/engine"
)

// RegisterPositionRoutes exposes the caller's position views.
func RegisterPositionRoutes(r fiber.Router, h *engine.Handler) {
	group := r.Group("/positions")
	group.Get("/me", h.Me)
	group.Get("/me/ratio", h.Ratio)
	group.Get("/me/history", h.History)
}
