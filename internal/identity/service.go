package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/patholens/patholens-api/internal/apperr"
)

// Service manages user lifecycle: registration, credential checks and
// profile updates.
type Service struct {
	repo       Repository
	bcryptCost int
}

// NewService creates a new identity service.
func NewService(repo Repository, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
	Gender   *string
	Phone    *string
}

// UpdateInput carries a partial profile update; nil fields are left as-is.
type UpdateInput struct {
	Name   *string
	Age    *int
	Gender *string
	Phone  *string
}

// NormalizeEmail lowercases and trims an email address so uniqueness checks
// and lookups agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return User{}, apperr.Internal(err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		Age:          in.Age,
		Gender:       in.Gender,
		Phone:        normalizePhone(in.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, translateRepoError(err)
	}

	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password produce the exact same failure.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, errInvalidCredentials()
		}
		return User{}, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, errInvalidCredentials()
	}

	return user, nil
}

// GetByID fetches a user.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound("User not found")
		}
		return User{}, apperr.Internal(err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update and returns the new state.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput) (User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Age != nil {
		user.Age = in.Age
	}
	if in.Gender != nil {
		user.Gender = in.Gender
	}
	if in.Phone != nil {
		user.Phone = normalizePhone(in.Phone)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, translateRepoError(err)
	}

	return user, nil
}

func errInvalidCredentials() error {
	return apperr.Unauthenticated("Invalid email or password")
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func translateRepoError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return apperr.ValidationField("email", "This email is already registered")
	case errors.Is(err, ErrPhoneTaken):
		return apperr.ValidationField("phone_number", "This phone number is already registered")
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("User not found")
	default:
		return apperr.Internal(err)
	}
}
