package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/token"
)

const (
	userIDKey      = "user_id"
	bearerTokenKey = "bearer_token"
)

// Auth validates the bearer token against the token service and stores the
// resolved user id (and the presented plaintext, for logout) in locals.
func Auth(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return apperr.Unauthenticated("Unauthenticated")
		}
		plaintext := strings.TrimSpace(authz[len("Bearer "):])

		userID, err := tokens.Validate(c.UserContext(), plaintext)
		if err != nil {
			return err
		}

		c.Locals(userIDKey, userID)
		c.Locals(bearerTokenKey, plaintext)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by Auth, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// BearerToken returns the plaintext token presented on this request, or "".
func BearerToken(c *fiber.Ctx) string {
	tok, _ := c.Locals(bearerTokenKey).(string)
	return tok
}
