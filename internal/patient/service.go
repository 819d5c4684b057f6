package patient

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

const imageDir = "diagnosis_images"

// Diagnosis images are jpeg or png only, matching the mobile client.
var allowedImageTypes = []string{"image/jpeg", "image/png"}

// Service owns patient record CRUD. Every operation is scoped to the calling
// user: records of other users behave as if they do not exist.
type Service struct {
	repo     Repository
	files    storage.Storage
	maxBytes int64
}

// NewService creates a patient service.
func NewService(repo Repository, files storage.Storage, maxBytes int64) *Service {
	return &Service{repo: repo, files: files, maxBytes: maxBytes}
}

// CreateInput carries validated record fields.
type CreateInput struct {
	PatientName   string
	Age           int
	Gender        string
	ContactNumber string
	Result        *string
	Confidence    *float64
}

// UpdateInput is a partial update; nil fields are left as-is.
type UpdateInput struct {
	PatientName   *string
	Age           *int
	Gender        *string
	ContactNumber *string
	Result        *string
	Confidence    *float64
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Patient, error) {
	patients, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return patients, nil
}

// Get fetches one owned record.
func (s *Service) Get(ctx context.Context, userID, id string) (Patient, error) {
	return s.getOwned(ctx, userID, id)
}

// Create stores a record with an optional diagnosis image.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput, image *multipart.FileHeader) (Patient, error) {
	imagePath, err := s.saveImage(ctx, image)
	if err != nil {
		return Patient{}, err
	}

	now := time.Now().UTC()
	p := Patient{
		ID:             uuid.New().String(),
		UserID:         userID,
		PatientName:    in.PatientName,
		Age:            in.Age,
		Gender:         in.Gender,
		ContactNumber:  in.ContactNumber,
		DiagnosisImage: imagePath,
		Result:         in.Result,
		Confidence:     in.Confidence,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// The record never existed, so the stored image is orphaned.
		if imagePath != nil {
			_ = s.files.Delete(ctx, *imagePath)
		}
		return Patient{}, apperr.Internal(err)
	}

	return p, nil
}

// Update applies a partial update; a new image replaces and deletes the old one.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput, image *multipart.FileHeader) (Patient, error) {
	p, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return Patient{}, err
	}

	if in.PatientName != nil {
		p.PatientName = *in.PatientName
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.ContactNumber != nil {
		p.ContactNumber = *in.ContactNumber
	}
	if in.Result != nil {
		p.Result = in.Result
	}
	if in.Confidence != nil {
		p.Confidence = in.Confidence
	}

	if image != nil {
		imagePath, err := s.saveImage(ctx, image)
		if err != nil {
			return Patient{}, err
		}
		if p.DiagnosisImage != nil {
			_ = s.files.Delete(ctx, *p.DiagnosisImage)
		}
		p.DiagnosisImage = imagePath
	}

	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, translateRepoError(err)
	}

	return p, nil
}

// Delete removes an owned record and its stored image.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	p, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if p.DiagnosisImage != nil {
		_ = s.files.Delete(ctx, *p.DiagnosisImage)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return nil
}

// ImageURL resolves a record's image path to a public URL, or nil.
func (s *Service) ImageURL(p Patient) *string {
	if p.DiagnosisImage == nil {
		return nil
	}
	url := s.files.URL(*p.DiagnosisImage)
	return &url
}

// getOwned fetches a record and hides it when the caller does not own it.
func (s *Service) getOwned(ctx context.Context, userID, id string) (Patient, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Patient{}, translateRepoError(err)
	}
	if p.UserID != userID {
		return Patient{}, apperr.NotFound("Patient not found")
	}
	return p, nil
}

// saveImage validates and stores an optional upload, returning its path.
func (s *Service) saveImage(ctx context.Context, image *multipart.FileHeader) (*string, error) {
	if image == nil {
		return nil, nil
	}
	if image.Size > s.maxBytes {
		return nil, apperr.ValidationField("diagnosis_image", fmt.Sprintf("Image size must not exceed %d bytes", s.maxBytes))
	}

	f, err := image.Open()
	if err != nil {
		return nil, apperr.ValidationField("diagnosis_image", "Invalid file upload")
	}
	mt, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		return nil, apperr.ValidationField("diagnosis_image", "Invalid file upload")
	}

	ok := false
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			ok = true
			break
		}
	}
	if !ok {
		return nil, apperr.ValidationField("diagnosis_image", "Image must be jpeg or png")
	}

	src, err := image.Open()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer src.Close()

	path := filepath.Join(imageDir, uuid.New().String()+mt.Extension())
	if err := s.files.Save(ctx, path, src); err != nil {
		return nil, apperr.Internal(err)
	}

	return &path, nil
}

func translateRepoError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Patient not found")
	}
	return apperr.Internal(err)
}
