package profileimage

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	images map[string]ProfileImage // keyed by user id
}

// NewMemoryRepository builds an in-memory profile image store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{images: make(map[string]ProfileImage)}
}

func (r *memoryRepository) Upsert(_ context.Context, img ProfileImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.images[img.UserID]; ok {
		img.CreatedAt = existing.CreatedAt
	}
	r.images[img.UserID] = img
	return nil
}

func (r *memoryRepository) FindByUser(_ context.Context, userID string) (ProfileImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.images[userID]
	if !ok {
		return ProfileImage{}, ErrNotFound
	}
	return img, nil
}

func (r *memoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.images[userID]; !ok {
		return ErrNotFound
	}
	delete(r.images, userID)
	return nil
}
