package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/synthvault/synthvault/internal/engine"
)

// RegisterVaultRoutes wires vault setup and the issuance operations.
func RegisterVaultRoutes(r fiber.Router, h *engine.Handler) {
	group := r.Group("/vault")
	group.Post("/initialize", h.InitializeVault)
	group.Post("/deposit", h.Deposit)
	group.Post("/mint", h.Mint)
	group.Post("/trade", h.Trade)
	group.Post("/redeem", h.Redeem)
}
