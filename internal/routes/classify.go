package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/classify"
)

// RegisterClassifyRoutes wires the image classification endpoint. The mobile
// client calls it before a user record exists, so it takes no bearer token.
func RegisterClassifyRoutes(r fiber.Router, h *classify.Handler) {
	r.Post("/classify-image", h.Classify)
}
