package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/prognoza/forecast-platform/pkg/auth"
)

// AuthMiddleware validates bearer tokens at the edge. Both hosted and
// legacy tokens are accepted; the resolved identity is forwarded to
// the backend in headers so it does not have to re-parse the token for
// routing decisions.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Отсутствует заголовок Authorization",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Недействительный токен",
			})
		}

		session, err := auth.ResolveSession(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Недействительный токен",
			})
		}

		c.Locals("session_kind", string(session.Kind))
		c.Locals("email", session.Email)
		c.Locals("role", session.Role)

		c.Request().Header.Set("X-Session-Kind", string(session.Kind))
		c.Request().Header.Set("X-User-Email", session.Email)
		if session.Kind == auth.SessionHosted {
			c.Request().Header.Set("X-Hosted-ID", session.HostedID)
		} else {
			c.Locals("user_id", session.UserID)
			c.Request().Header.Set("X-User-ID", fmt.Sprintf("%d", session.UserID))
			c.Request().Header.Set("X-User-Role", session.Role)
		}

		return c.Next()
	}
}

// AdminMiddleware checks the admin role after AuthMiddleware. Hosted
// sessions carry no role claim, so the check is delegated to the
// backend for those.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if kind, ok := c.Locals("session_kind").(string); ok && kind == string(auth.SessionHosted) {
			return c.Next()
		}

		role := c.Locals("role")
		if role == nil || role.(string) != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}
