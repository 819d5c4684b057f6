package classify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/patholens/patholens-api/internal/apperr"
)

// Image formats the bridge accepts. Decided by sniffing content, not by
// trusting the client's filename or Content-Type.
var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
}

// Service is the classification bridge: it validates an upload, stages it to
// a scratch file, hands the path to the external tool and decodes the tool's
// output. The scratch file is removed on every exit path.
type Service struct {
	runner     Runner
	scratchDir string
	maxBytes   int64
	logger     *slog.Logger
}

// NewService builds the bridge. scratchDir defaults to a directory under the
// OS temp dir and is created eagerly so staging failures surface at startup.
func NewService(runner Runner, scratchDir string, maxBytes int64, logger *slog.Logger) (*Service, error) {
	if scratchDir == "" {
		scratchDir = filepath.Join(os.TempDir(), "patholens-scratch")
	}
	if err := os.MkdirAll(scratchDir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	return &Service{
		runner:     runner,
		scratchDir: scratchDir,
		maxBytes:   maxBytes,
		logger:     logger,
	}, nil
}

// ScratchDir exposes the staging directory (tests assert cleanup there).
func (s *Service) ScratchDir() string {
	return s.scratchDir
}

// Classify runs the full bridge for one uploaded image.
func (s *Service) Classify(ctx context.Context, file *multipart.FileHeader) (Result, error) {
	mt, err := s.checkUpload(file)
	if err != nil {
		return nil, err
	}

	scratchPath, err := s.stage(file, mt.Extension())
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("stage upload: %w", err))
	}
	defer func() {
		if rmErr := os.Remove(scratchPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("scratch file not removed", slog.String("path", scratchPath), slog.Any("error", rmErr))
		}
	}()

	raw, err := s.runner.Run(ctx, scratchPath)
	if err != nil {
		s.logger.Error("classifier invocation failed", slog.Any("error", err))
		return nil, apperr.Upstream("Failed to process image classification", err)
	}

	result, err := Parse(raw)
	if err != nil {
		s.logger.Error("classifier output unparseable", slog.Any("error", err))
		return nil, apperr.Upstream("Classifier returned invalid output", err)
	}

	return result, nil
}

// checkUpload enforces the size and format allow-list before anything is
// written to disk or executed.
func (s *Service) checkUpload(file *multipart.FileHeader) (*mimetype.MIME, error) {
	if file == nil {
		return nil, apperr.ValidationField("image", "Image file is required")
	}
	if file.Size > s.maxBytes {
		return nil, apperr.ValidationField("image", fmt.Sprintf("Image size must not exceed %d bytes", s.maxBytes))
	}

	f, err := file.Open()
	if err != nil {
		return nil, apperr.ValidationField("image", "Invalid file upload")
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, apperr.ValidationField("image", "Invalid file upload")
	}

	for _, allowed := range allowedTypes {
		if mt.Is(allowed) {
			return mt, nil
		}
	}
	return nil, apperr.ValidationField("image", "Image must be jpeg, png, gif, webp, or bmp")
}

// stage copies the upload into the scratch dir under a unique name and
// returns the absolute path handed to the external tool.
func (s *Service) stage(file *multipart.FileHeader, ext string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	scratchPath := filepath.Join(s.scratchDir, uuid.New().String()+ext)

	dst, err := os.OpenFile(scratchPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(scratchPath)
		return "", err
	}

	return scratchPath, nil
}
