package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/synthvault/synthvault/internal/identity"
)

func TestBearerAuth(t *testing.T) {
	ids := identity.NewService(identity.NewMemoryRepository(), "test-secret", 15*time.Minute)
	ctx := context.Background()

	user, err := ids.Register(ctx, identity.Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := ids.Login(ctx, identity.Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	app := fiber.New()
	app.Get("/whoami", BearerAuth(ids), func(c *fiber.Ctx) error {
		return c.SendString(CallerID(c))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.TrimSpace(string(body)) != user.ID {
		t.Fatalf("expected caller %s, got %s", user.ID, body)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", resp.StatusCode)
	}
}
