package middleware

import (
	"crypto/subtle"

	"github.com/bilgisen/folio/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the admin key
const APIKeyHeader = "X-API-Key"

// AdminOnly allows requests whose X-API-Key matches adminKey.
// An empty adminKey rejects every request.
func AdminOnly(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(APIKeyHeader)
		if key == "" {
			return authFailed(c, fiber.StatusUnauthorized, "API key is required")
		}
		if adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
			return authFailed(c, fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}

func authFailed(c *fiber.Ctx, status int, message string) error {
	logger.Get().Warn().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("ip", c.IP()).
		Int("status", status).
		Msg("Authentication failed")

	return c.Status(status).JSON(fiber.Map{"error": message})
}
