package patient

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	patients map[string]Patient
}

// NewMemoryRepository builds an in-memory patient store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{patients: make(map[string]Patient)}
}

func (r *memoryRepository) Create(_ context.Context, p Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Patient
	for _, p := range r.patients {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryRepository) Update(_ context.Context, p Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; !ok {
		return ErrNotFound
	}
	r.patients[p.ID] = p
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return ErrNotFound
	}
	delete(r.patients, id)
	return nil
}
