package token

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]AccessToken // keyed by digest
}

// NewMemoryRepository builds an in-memory token store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{tokens: make(map[string]AccessToken)}
}

func (r *memoryRepository) Store(_ context.Context, token AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Digest] = token
	return nil
}

func (r *memoryRepository) FindByDigest(_ context.Context, digest string) (AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.tokens[digest]
	if !ok {
		return AccessToken{}, ErrNotFound
	}
	return token, nil
}

func (r *memoryRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for digest, token := range r.tokens {
		if token.ID == id {
			token.LastUsedAt = &at
			r.tokens[digest] = token
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) DeleteByDigest(_ context.Context, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, digest)
	return nil
}

func (r *memoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for digest, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, digest)
		}
	}
	return nil
}
