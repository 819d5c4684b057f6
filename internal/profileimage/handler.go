package profileimage

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/middleware"
	"github.com/patholens/patholens-api/internal/respond"
)

// Handler exposes the caller's profile image endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the profile image HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type imageView struct {
	URL       string `json:"url"`
	UpdatedAt string `json:"updated_at"`
}

func (h *Handler) viewOf(img ProfileImage) imageView {
	return imageView{
		URL:       h.service.URL(img),
		UpdatedAt: img.UpdatedAt.Format(time.RFC3339),
	}
}

// Get returns the caller's profile image. Having no image is not an error
// here: the client gets a 200 with a null image and renders its placeholder.
func (h *Handler) Get(c *fiber.Ctx) error {
	img, err := h.service.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindNotFound {
			return respond.OK(c, "", fiber.Map{"image": nil})
		}
		return err
	}
	return respond.OK(c, "", fiber.Map{"image": h.viewOf(img)})
}

// Upload sets or replaces the caller's profile image.
func (h *Handler) Upload(c *fiber.Ctx) error {
	file, _ := c.FormFile("image")

	img, err := h.service.Upload(c.UserContext(), middleware.UserID(c), file)
	if err != nil {
		return err
	}
	return respond.OK(c, "Profile image updated successfully", fiber.Map{"image": h.viewOf(img)})
}

// Delete removes the caller's profile image.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return respond.OK(c, "Profile image deleted successfully", nil)
}
