package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/news"
)

// RegisterNewsRoutes wires the news passthrough endpoint.
func RegisterNewsRoutes(r fiber.Router, h *news.Handler) {
	r.Get("/news", h.Latest)
}
