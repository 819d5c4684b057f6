package news

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/respond"
)

// Handler exposes the news passthrough endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds the news HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Latest proxies the upstream article feed.
func (h *Handler) Latest(c *fiber.Ctx) error {
	payload, err := h.service.Latest(c.UserContext())
	if err != nil {
		return err
	}
	return respond.OK(c, "", fiber.Map{"news": payload})
}
