package patient

import (
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/middleware"
	"github.com/patholens/patholens-api/internal/respond"
	"github.com/patholens/patholens-api/internal/validate"
)

// Handler exposes patient record endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the patient HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	PatientName   string   `json:"patient_name" form:"patient_name" validate:"required,max=255"`
	Age           *int     `json:"age" form:"age" validate:"required,min=0,max=150"`
	Gender        string   `json:"gender" form:"gender" validate:"required,oneof=male female other"`
	ContactNumber string   `json:"contact_number" form:"contact_number" validate:"required,max=15"`
	Result        *string  `json:"result" form:"result" validate:"omitempty,max=255"`
	Confidence    *float64 `json:"confidence" form:"confidence" validate:"omitempty,min=0,max=100"`
}

type updateRequest struct {
	PatientName   *string  `json:"patient_name" form:"patient_name" validate:"omitempty,max=255"`
	Age           *int     `json:"age" form:"age" validate:"omitempty,min=0,max=150"`
	Gender        *string  `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	ContactNumber *string  `json:"contact_number" form:"contact_number" validate:"omitempty,max=15"`
	Result        *string  `json:"result" form:"result" validate:"omitempty,max=255"`
	Confidence    *float64 `json:"confidence" form:"confidence" validate:"omitempty,min=0,max=100"`
}

type patientView struct {
	ID             string   `json:"id"`
	PatientName    string   `json:"patient_name"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	ContactNumber  string   `json:"contact_number"`
	DiagnosisImage *string  `json:"diagnosis_image_url"`
	Result         *string  `json:"result"`
	Confidence     *float64 `json:"confidence"`
	CreatedAt      string   `json:"created_at"`
}

func (h *Handler) viewOf(p Patient) patientView {
	return patientView{
		ID:             p.ID,
		PatientName:    p.PatientName,
		Age:            p.Age,
		Gender:         p.Gender,
		ContactNumber:  p.ContactNumber,
		DiagnosisImage: h.service.ImageURL(p),
		Result:         p.Result,
		Confidence:     p.Confidence,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

// List returns the caller's records, newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	patients, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}

	views := make([]patientView, 0, len(patients))
	for _, p := range patients {
		views = append(views, h.viewOf(p))
	}

	return respond.OK(c, "", fiber.Map{"patients": views, "count": len(views)})
}

// Get returns one owned record.
func (h *Handler) Get(c *fiber.Ctx) error {
	p, err := h.service.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond.OK(c, "", fiber.Map{"patient": h.viewOf(p)})
}

// Create stores a new record with an optional diagnosis image.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ValidationField("body", "Invalid request body")
	}
	if fields := validate.Struct(req); fields != nil {
		return apperr.Validation(fields)
	}

	p, err := h.service.Create(c.UserContext(), middleware.UserID(c), CreateInput{
		PatientName:   req.PatientName,
		Age:           *req.Age,
		Gender:        req.Gender,
		ContactNumber: req.ContactNumber,
		Result:        req.Result,
		Confidence:    req.Confidence,
	}, formFile(c, "diagnosis_image"))
	if err != nil {
		return err
	}

	return respond.Created(c, "Patient record created successfully", fiber.Map{"patient": h.viewOf(p)})
}

// Update applies a partial update to an owned record.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ValidationField("body", "Invalid request body")
	}
	if fields := validate.Struct(req); fields != nil {
		return apperr.Validation(fields)
	}

	p, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), UpdateInput{
		PatientName:   req.PatientName,
		Age:           req.Age,
		Gender:        req.Gender,
		ContactNumber: req.ContactNumber,
		Result:        req.Result,
		Confidence:    req.Confidence,
	}, formFile(c, "diagnosis_image"))
	if err != nil {
		return err
	}

	return respond.OK(c, "Patient record updated successfully", fiber.Map{"patient": h.viewOf(p)})
}

// Delete removes an owned record.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return respond.OK(c, "Patient record deleted successfully", nil)
}

// formFile returns the named upload or nil; the field is optional on every
// patient endpoint.
func formFile(c *fiber.Ctx, name string) *multipart.FileHeader {
	file, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return file
}
