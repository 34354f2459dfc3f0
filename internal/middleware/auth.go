package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/synthvault/synthvault/internal/identity"
)

// UserIDKey is the fiber.Ctx local under which the authenticated user id is stored.
const UserIDKey = "user_id"

// BearerAuth validates bearer tokens and resolves the caller identity every
// engine operation authorizes against.
func BearerAuth(ids *identity.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		user, err := ids.Verify(c.UserContext(), tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDKey, user.ID)
		return c.Next()
	}
}

// CallerID returns the authenticated user id set by BearerAuth.
func CallerID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
