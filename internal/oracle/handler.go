package oracle

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes oracle HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an oracle HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Initialize creates the oracle with the caller as authority.
func (h *Handler) Initialize(caller func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		o, err := h.service.Initialize(c.UserContext(), caller(c))
		if err != nil {
			if errors.Is(err, ErrAlreadyInitialized) {
				return fiber.NewError(http.StatusConflict, err.Error())
			}
			return err
		}
		return c.Status(http.StatusCreated).JSON(oracleResponse(o))
	}
}

type updatePriceRequest struct {
	Price uint64 `json:"price"`
}

// UpdatePrice pushes a new reference price; authority only.
func (h *Handler) UpdatePrice(caller func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updatePriceRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		o, err := h.service.UpdatePrice(c.UserContext(), caller(c), req.Price)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnauthorized):
				return fiber.NewError(http.StatusForbidden, err.Error())
			case errors.Is(err, ErrNotInitialized):
				return fiber.NewError(http.StatusNotFound, err.Error())
			}
			return err
		}
		return c.Status(http.StatusOK).JSON(oracleResponse(o))
	}
}

// Price returns the current oracle snapshot.
func (h *Handler) Price(c *fiber.Ctx) error {
	o, err := h.service.Read(c.UserContext())
	if err != nil {
		if errors.Is(err, ErrNotInitialized) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(oracleResponse(o))
}

// History returns recorded price points within an optional time range.
func (h *Handler) History(c *fiber.Ctx) error {
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid from timestamp")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid to timestamp")
		}
		to = parsed
	}

	points, err := h.service.History(c.UserContext(), from, to)
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(points))
	for _, p := range points {
		out = append(out, fiber.Map{
			"symbol":      p.Symbol,
			"price":       p.Price,
			"recorded_at": p.RecordedAt.Format(time.RFC3339),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"points": out})
}

func oracleResponse(o Oracle) fiber.Map {
	return fiber.Map{
		"price":      o.Price,
		"status":     o.Status.String(),
		"updated_at": o.UpdatedAt.Format(time.RFC3339),
	}
}
