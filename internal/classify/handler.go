package classify

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/respond"
)

// Handler exposes the classify-image endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds the classification HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Classify accepts a multipart image and returns the tool's result.
func (h *Handler) Classify(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return apperr.ValidationField("image", "Image file is required")
	}

	result, err := h.service.Classify(c.UserContext(), file)
	if err != nil {
		return err
	}

	return respond.OK(c, "Image classified", result)
}
