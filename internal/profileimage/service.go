package profileimage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/storage"
)

const imageDir = "profile_images"

// MaxBytes caps profile picture uploads.
const MaxBytes = 2 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Service manages the single profile image each user may have.
type Service struct {
	repo  Repository
	files storage.Storage
}

// NewService creates a profile image service.
func NewService(repo Repository, files storage.Storage) *Service {
	return &Service{repo: repo, files: files}
}

// Get returns the user's image, or a not-found error when none is set.
func (s *Service) Get(ctx context.Context, userID string) (ProfileImage, error) {
	img, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return ProfileImage{}, translateRepoError(err)
	}
	return img, nil
}

// Upload stores a new image and deletes the previous file when one exists.
func (s *Service) Upload(ctx context.Context, userID string, file *multipart.FileHeader) (ProfileImage, error) {
	if file == nil {
		return ProfileImage{}, apperr.ValidationField("image", "The image field is required")
	}
	if file.Size > MaxBytes {
		return ProfileImage{}, apperr.ValidationField("image", fmt.Sprintf("Image size must not exceed %d bytes", MaxBytes))
	}

	f, err := file.Open()
	if err != nil {
		return ProfileImage{}, apperr.ValidationField("image", "Invalid file upload")
	}
	mt, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		return ProfileImage{}, apperr.ValidationField("image", "Invalid file upload")
	}

	ok := false
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			ok = true
			break
		}
	}
	if !ok {
		return ProfileImage{}, apperr.ValidationField("image", "Image must be jpeg, png or webp")
	}

	var previous *string
	if existing, err := s.repo.FindByUser(ctx, userID); err == nil {
		previous = &existing.ImagePath
	}

	src, err := file.Open()
	if err != nil {
		return ProfileImage{}, apperr.Internal(err)
	}
	defer src.Close()

	path := filepath.Join(imageDir, uuid.New().String()+mt.Extension())
	if err := s.files.Save(ctx, path, src); err != nil {
		return ProfileImage{}, apperr.Internal(err)
	}

	now := time.Now().UTC()
	img := ProfileImage{UserID: userID, ImagePath: path, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Upsert(ctx, img); err != nil {
		_ = s.files.Delete(ctx, path)
		return ProfileImage{}, apperr.Internal(err)
	}

	if previous != nil && *previous != path {
		_ = s.files.Delete(ctx, *previous)
	}

	return img, nil
}

// Delete removes the user's image and its stored file.
func (s *Service) Delete(ctx context.Context, userID string) error {
	img, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return translateRepoError(err)
	}

	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return translateRepoError(err)
	}

	_ = s.files.Delete(ctx, img.ImagePath)
	return nil
}

// URL resolves an image to its public URL.
func (s *Service) URL(img ProfileImage) string {
	return s.files.URL(img.ImagePath)
}

func translateRepoError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Profile image not found")
	}
	return apperr.Internal(err)
}
