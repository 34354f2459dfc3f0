package engine

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/synthvault/synthvault/internal/oracle"
	"github.com/synthvault/synthvault/internal/position"
	"github.com/synthvault/synthvault/internal/vault"
)

// Handler exposes the issuance engine over HTTP. The caller identity comes
// from the auth middleware.
type Handler struct {
	engine *Engine
	caller func(*fiber.Ctx) string
}

// NewHandler builds an engine HTTP handler.
func NewHandler(engine *Engine, caller func(*fiber.Ctx) string) *Handler {
	return &Handler{engine: engine, caller: caller}
}

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

// InitializeVault performs one-time vault setup.
func (h *Handler) InitializeVault(c *fiber.Ctx) error {
	v, err := h.engine.InitializeVault(c.UserContext())
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"created_at": v.CreatedAt.Format(time.RFC3339),
	})
}

// Deposit moves collateral into the vault pool.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.engine.Deposit(c.UserContext(), h.caller(c), req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"position":    positionResponse(res.Position),
		"auto_minted": res.AutoMinted,
	})
}

type mintRequest struct {
	Amount uint64 `json:"amount"`
	Owner  string `json:"owner,omitempty"`
}

// Mint issues synthetic supply against deposited collateral.
func (h *Handler) Mint(c *fiber.Ctx) error {
	var req mintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller := h.caller(c)
	owner := req.Owner
	if owner == "" {
		owner = caller
	}
	p, err := h.engine.Mint(c.UserContext(), caller, owner, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"position": positionResponse(p)})
}

type tradeRequest struct {
	Amount uint64 `json:"amount"`
	IsBuy  bool   `json:"is_buy"`
}

// Trade executes a protocol-priced buy or sell.
func (h *Handler) Trade(c *fiber.Ctx) error {
	var req tradeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.engine.Trade(c.UserContext(), h.caller(c), req.Amount, req.IsBuy)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"is_buy":      res.IsBuy,
		"amount":      res.Amount,
		"usdc_amount": res.USDCAmount,
		"price":       res.Price,
		"position":    positionResponse(res.Position),
	})
}

// Redeem burns synthetic supply for collateral.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.engine.Redeem(c.UserContext(), h.caller(c), req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"amount":      res.Amount,
		"usdc_amount": res.USDCAmount,
		"price":       res.Price,
		"position":    positionResponse(res.Position),
	})
}

// Me returns the caller's position.
func (h *Handler) Me(c *fiber.Ctx) error {
	p, err := h.engine.Position(c.UserContext(), h.caller(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"position": positionResponse(p)})
}

// Ratio returns the caller's collateralization report.
func (h *Handler) Ratio(c *fiber.Ctx) error {
	rep, err := h.engine.Report(c.UserContext(), h.caller(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"owner":        rep.Owner,
		"deposited":    rep.Deposited,
		"minted":       rep.Minted,
		"price":        rep.Price,
		"minted_value": rep.MintedValue,
		"ratio_bps":    rep.RatioBPS,
		"max_mintable": rep.MaxMintable,
		"headroom":     rep.Headroom,
	})
}

// History returns the caller's executed operations, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	records, err := h.engine.History(c.UserContext(), h.caller(c), limit)
	if err != nil {
		return mapError(err)
	}
	out := make([]fiber.Map, 0, len(records))
	for _, rec := range records {
		out = append(out, fiber.Map{
			"id":          rec.ID,
			"kind":        rec.Kind,
			"amount":      rec.Amount,
			"usdc_amount": rec.USDCAmount,
			"price":       rec.Price,
			"executed_at": rec.ExecutedAt.Format(time.RFC3339),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"records": out})
}

func positionResponse(p position.Position) fiber.Map {
	return fiber.Map{
		"owner":         p.Owner,
		"deposited":     p.Deposited,
		"minted":        p.Minted,
		"last_activity": p.LastActivity.Format(time.RFC3339),
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInsufficientCollateral),
		errors.Is(err, ErrInsufficientSyntheticBalance),
		errors.Is(err, ErrMathOverflow):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, vault.ErrAlreadyInitialized):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, vault.ErrNotInitialized),
		errors.Is(err, oracle.ErrNotInitialized),
		errors.Is(err, position.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, oracle.ErrPriceUnavailable),
		errors.Is(err, oracle.ErrPriceStale):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	}
	return err
}
