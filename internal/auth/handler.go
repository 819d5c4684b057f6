package auth

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/identity"
	"github.com/patholens/patholens-api/internal/middleware"
	"github.com/patholens/patholens-api/internal/respond"
	"github.com/patholens/patholens-api/internal/token"
	"github.com/patholens/patholens-api/internal/validate"
)

// Handler exposes the register/login/logout/me endpoints.
type Handler struct {
	ids    *identity.Service
	tokens *token.Service
	logger *slog.Logger
}

// NewHandler builds the auth HTTP handler.
func NewHandler(ids *identity.Service, tokens *token.Service, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Name                 string  `json:"name" validate:"required,min=2,max=255"`
	Email                string  `json:"email" validate:"required,email,max=255"`
	Password             string  `json:"password" validate:"required,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" validate:"required,eqfield=Password"`
	Age                  *int    `json:"age" validate:"omitempty,min=13,max=120"`
	Gender               *string `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	Phone                *string `json:"phone_number" validate:"omitempty,min=10,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=255"`
	Age    *int    `json:"age" validate:"omitempty,min=13,max=120"`
	Gender *string `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	Phone  *string `json:"phone_number" validate:"omitempty,min=10,max=20"`
}

type userView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Age       *int    `json:"age"`
	Gender    *string `json:"gender"`
	Phone     *string `json:"phone_number"`
	CreatedAt string  `json:"created_at"`
}

func viewOf(user identity.User) userView {
	return userView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		Gender:    user.Gender,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// Register creates a user and issues a first token in one round trip.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ValidationField("body", "Invalid request body")
	}
	if fields := validate.Struct(req); fields != nil {
		return apperr.Validation(fields)
	}

	user, err := h.ids.Register(c.UserContext(), identity.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Gender:   req.Gender,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}

	plaintext, _, err := h.tokens.Issue(c.UserContext(), user.ID, token.DefaultName)
	if err != nil {
		return err
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID), slog.String("email", user.Email))

	return respond.Created(c, "Registration successful", fiber.Map{
		"user":       viewOf(user),
		"token":      plaintext,
		"token_type": "Bearer",
	})
}

// Login verifies credentials and issues a fresh token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ValidationField("body", "Invalid request body")
	}
	if fields := validate.Struct(req); fields != nil {
		return apperr.Validation(fields)
	}

	user, err := h.ids.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	plaintext, _, err := h.tokens.Issue(c.UserContext(), user.ID, token.DefaultName)
	if err != nil {
		return err
	}

	h.logger.Info("user logged in", slog.String("user_id", user.ID), slog.String("email", user.Email))

	return respond.OK(c, "Login successful", fiber.Map{
		"user":       viewOf(user),
		"token":      plaintext,
		"token_type": "Bearer",
	})
}

// Logout revokes the token presented on this request.
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if err := h.tokens.Revoke(c.UserContext(), middleware.BearerToken(c)); err != nil {
		return err
	}

	h.logger.Info("user logged out", slog.String("user_id", userID))

	return respond.OK(c, "Logged out successfully", nil)
}

// LogoutAll revokes every token of the authenticated user.
func (h *Handler) LogoutAll(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if err := h.tokens.RevokeAll(c.UserContext(), userID); err != nil {
		return err
	}

	h.logger.Info("user logged out everywhere", slog.String("user_id", userID))

	return respond.OK(c, "Logged out from all devices successfully", nil)
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.ids.GetByID(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond.OK(c, "", fiber.Map{"user": viewOf(user)})
}

// UpdateMe applies a partial profile update.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ValidationField("body", "Invalid request body")
	}
	if fields := validate.Struct(req); fields != nil {
		return apperr.Validation(fields)
	}

	user, err := h.ids.UpdateProfile(c.UserContext(), middleware.UserID(c), identity.UpdateInput{
		Name:   req.Name,
		Age:    req.Age,
		Gender: req.Gender,
		Phone:  req.Phone,
	})
	if err != nil {
		return err
	}

	return respond.OK(c, "Profile updated", fiber.Map{"user": viewOf(user)})
}
