package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes registration and login endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentialsRequest struct {
	Address    string `json:"address"`
	Passphrase string `json:"passphrase"`
}

// Register creates a new user.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.Register(c.UserContext(), Credentials{Address: req.Address, Passphrase: req.Passphrase})
	if err != nil {
		if errors.Is(err, ErrAddressTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id":    user.ID,
		"address":    user.Address,
		"created_at": user.CreatedAt.Format(time.RFC3339),
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, token, err := h.service.Login(c.UserContext(), Credentials{Address: req.Address, Passphrase: req.Passphrase})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":      user.ID,
		"access_token": token,
		"expires_in":   int64(h.service.TTL().Seconds()),
	})
}
