package storage

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Uploader for tests and storage-less dev runs.
type MemoryStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

// NewMemoryStorage builds an empty in-memory uploader.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: make(map[string][]byte)}
}

// Upload records the object and returns a synthetic URL.
func (m *MemoryStorage) Upload(_ context.Context, fileName, _ string, body []byte) (string, error) {
	key := ObjectKey(fileName)
	m.mu.Lock()
	m.Objects[key] = body
	m.mu.Unlock()
	return "memory://" + key, nil
}
