package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/patholens/patholens-api/internal/apperr"
)

const secretBytes = 32

// DefaultName labels tokens issued without an explicit client name.
const DefaultName = "api"

// Service issues, validates and revokes opaque bearer tokens.
type Service struct {
	repo Repository
}

// NewService creates a token service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Issue mints a new token for the user and returns the plaintext. The
// plaintext is never stored and cannot be retrieved again.
func (s *Service) Issue(ctx context.Context, userID, name string) (string, AccessToken, error) {
	if name == "" {
		name = DefaultName
	}

	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", AccessToken{}, apperr.Internal(err)
	}
	plaintext := hex.EncodeToString(buf)

	record := AccessToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Digest:    Digest(plaintext),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Store(ctx, record); err != nil {
		return "", AccessToken{}, apperr.Internal(err)
	}

	return plaintext, record, nil
}

// Validate resolves a presented token to its owning user id. The failure is
// uniform: callers cannot distinguish an unknown token from anything else.
func (s *Service) Validate(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", errUnauthenticated()
	}

	record, err := s.repo.FindByDigest(ctx, Digest(plaintext))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", errUnauthenticated()
		}
		return "", apperr.Internal(err)
	}

	// Best effort; a failed touch must not fail the request.
	_ = s.repo.Touch(ctx, record.ID, time.Now().UTC())

	return record.UserID, nil
}

// Revoke deletes the presented token. Idempotent: revoking an absent token
// succeeds.
func (s *Service) Revoke(ctx context.Context, plaintext string) error {
	if err := s.repo.DeleteByDigest(ctx, Digest(plaintext)); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// RevokeAll deletes every token the user owns ("logout everywhere").
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Digest returns the hex SHA-256 of a token plaintext, the only form ever
// written to the database.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func errUnauthenticated() error {
	return apperr.Unauthenticated("Unauthenticated")
}
