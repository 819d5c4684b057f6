package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by id
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) Update(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.users[user.ID] = user
	return nil
}

// checkUnique mirrors the database's unique constraints on email and phone.
// Caller holds the lock.
func (r *memoryRepository) checkUnique(candidate User) error {
	for _, user := range r.users {
		if user.ID == candidate.ID {
			continue
		}
		if user.Email == candidate.Email {
			return ErrEmailTaken
		}
		if candidate.Phone != nil && user.Phone != nil && *user.Phone == *candidate.Phone {
			return ErrPhoneTaken
		}
	}
	return nil
}
