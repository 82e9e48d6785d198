package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/star-marathon/star_backend/internal/auth"
	"github.com/star-marathon/star_backend/internal/profile"
)

// Locals keys populated by Session.
const (
	LocalUserID   = "user_id"
	LocalRole     = "role"
	LocalExtToken = "ext_token"
)

// Session verifies the bearer token and exposes the authenticated identity
// (user id, role, embedded provider credential) to downstream handlers.
// Verification is pure; no store lookup happens per request.
func Session(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		session, err := tokens.Verify(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalRole, session.Role)
		c.Locals(LocalExtToken, session.ExtToken)
		return c.Next()
	}
}

// RequireAdmin gates a route group to profiles holding the admin role.
// Must run after Session.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role != profile.RoleAdmin {
			return fiber.NewError(http.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

// UserID recovers the authenticated Telegram id set by Session.
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(LocalUserID).(int64)
	return id, ok && id != 0
}

// ExtToken recovers the embedded provider session credential set by Session.
func ExtToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalExtToken).(string)
	return token
}
