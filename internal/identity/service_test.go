package identity

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/patholens/patholens-api/internal/apperr"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Ada Lovelace",
		Email:    "  Ada@Example.COM ",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if string(user.PasswordHash) == "correct-horse" {
		t.Fatal("password stored in plaintext")
	}

	got, err := svc.Authenticate(ctx, "ADA@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}
}

func TestAuthenticateFailureIsUniform(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, unknownErr := svc.Authenticate(ctx, "nobody@example.com", "secret123")
	_, wrongErr := svc.Authenticate(ctx, "a@example.com", "not-the-password")

	for name, err := range map[string]error{"unknown email": unknownErr, "wrong password": wrongErr} {
		appErr, ok := apperr.As(err)
		if !ok {
			t.Fatalf("%s: expected app error, got %v", name, err)
		}
		if appErr.Kind != apperr.KindUnauthenticated {
			t.Fatalf("%s: expected unauthenticated, got %s", name, appErr.Kind)
		}
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "dup@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(ctx, RegisterInput{Name: "B", Email: "DUP@example.com", Password: "secret456"})
	appErr, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %s", appErr.Kind)
	}
	if _, found := appErr.Fields["email"]; !found {
		t.Fatalf("expected email field error, got %v", appErr.Fields)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Old Name", Email: "u@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "New Name"
	age := 30
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateInput{Name: &name, Age: &age})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New Name" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Age == nil || *updated.Age != 30 {
		t.Fatalf("expected age 30, got %v", updated.Age)
	}
	if updated.Email != "u@example.com" {
		t.Fatalf("email changed unexpectedly: %q", updated.Email)
	}
}

func TestUpdateProfileDuplicatePhone(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	phone := "+15550001111"
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123", Phone: &phone}); err != nil {
		t.Fatalf("register a: %v", err)
	}
	other, err := svc.Register(ctx, RegisterInput{Name: "B", Email: "b@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register b: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, other.ID, UpdateInput{Phone: &phone})
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, found := appErr.Fields["phone_number"]; !found {
		t.Fatalf("expected phone_number field error, got %v", appErr.Fields)
	}
}
