package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/auth"
)

// RegisterAuthRoutes wires registration, login and logout endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, requireAuth, rateLimiter fiber.Handler) {
	r.Post("/register", h.Register)
	if rateLimiter != nil {
		r.Post("/login", rateLimiter, h.Login)
	} else {
		r.Post("/login", h.Login)
	}
	r.Post("/logout", requireAuth, h.Logout)
	r.Post("/logout-all", requireAuth, h.LogoutAll)
}
