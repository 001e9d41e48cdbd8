package store

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/graphbridge/pkg/module"
)

// MemoryStore keeps modules in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	modules map[string][]byte
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{modules: make(map[string][]byte)}
}

// Load returns a copy of the stored module.
func (s *MemoryStore) Load(ctx context.Context, path string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(ctx, "load", BackendMemory, path, len(data), start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.modules[path]
	if !ok {
		return nil, notFound(path)
	}
	return append([]byte(nil), stored...), nil
}

// Save stores a copy of data.
func (s *MemoryStore) Save(ctx context.Context, path string, data []byte) error {
	start := time.Now()
	s.mu.Lock()
	s.modules[path] = append([]byte(nil), data...)
	s.mu.Unlock()
	observe(ctx, "save", BackendMemory, path, len(data), start, nil)
	return nil
}

// List returns the stored paths.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.modules))
	for p := range s.modules {
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ module.Store = (*MemoryStore)(nil)
