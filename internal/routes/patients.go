package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/patient"
)

// RegisterPatientRoutes wires patient record CRUD.
func RegisterPatientRoutes(r fiber.Router, h *patient.Handler, requireAuth fiber.Handler) {
	group := r.Group("/patients", requireAuth)
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
