package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/auth"
	"github.com/patholens/patholens-api/internal/profileimage"
)

// RegisterMeRoutes wires the authenticated user's profile endpoints.
func RegisterMeRoutes(r fiber.Router, users *auth.Handler, images *profileimage.Handler, requireAuth fiber.Handler) {
	group := r.Group("/me", requireAuth)
	group.Get("/", users.Me)
	group.Put("/", users.UpdateMe)
	group.Get("/image", images.Get)
	group.Post("/image", images.Upload)
	group.Delete("/image", images.Delete)
}
