package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID assigns each request an identifier, honoring one the mobile
// client already supplies. The id is echoed on the response so a support
// report can be matched against the request log line.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Set(requestIDHeader, reqID)
		c.Locals(requestIDKey, reqID)

		return c.Next()
	}
}

// RequestIDFrom returns the identifier assigned by RequestID, or "".
func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
