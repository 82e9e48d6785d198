package document

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]Document
}

// NewMemoryRepository builds an in-memory document store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{docs: make(map[uuid.UUID]Document)}
}

func (r *memoryRepository) ListByLanguage(_ context.Context, lang string) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, d := range r.docs {
		if d.Language == lang {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryRepository) Find(_ context.Context, id uuid.UUID) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (r *memoryRepository) Save(_ context.Context, d Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[d.ID] = d
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}
