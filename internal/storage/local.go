package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local implements Storage on the local filesystem.
type Local struct {
	basePath string
	baseURL  string
}

// NewLocal creates a local storage rooted at basePath; files are publicly
// reachable under baseURL.
func NewLocal(basePath, baseURL string) (*Local, error) {
	if basePath == "" {
		basePath = "./storage"
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Local{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save stores a file, creating intermediate directories as needed.
func (s *Local) Save(_ context.Context, path string, reader io.Reader) error {
	fullPath := filepath.Join(s.basePath, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// Delete removes a file.
func (s *Local) Delete(_ context.Context, path string) error {
	if err := os.Remove(filepath.Join(s.basePath, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Exists checks for a file's presence.
func (s *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.basePath, path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// URL returns the public URL of a stored file.
func (s *Local) URL(path string) string {
	if s.baseURL == "" {
		return "/files/" + path
	}
	return s.baseURL + "/" + path
}
