// Package memory provides an in-memory docstore.Store used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/vbonduro/pantrysync/internal/docstore"
)

type Store struct {
	mu   sync.Mutex
	docs map[string][]byte // key: containerID + "/" + name

	// FailFind, FailRead and FailUpdate, when set, are returned by the
	// corresponding call. Tests use them to simulate transient IO failures.
	FailFind   error
	FailRead   error
	FailCreate error
	FailUpdate error
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

func key(name, containerID string) string {
	return containerID + "/" + name
}

func (s *Store) Find(_ context.Context, name, containerID string) (*docstore.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFind != nil {
		return nil, s.FailFind
	}
	k := key(name, containerID)
	if _, ok := s.docs[k]; !ok {
		return nil, docstore.ErrNotFound
	}
	return &docstore.Handle{ID: k, Name: name}, nil
}

func (s *Store) Read(_ context.Context, handle *docstore.Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRead != nil {
		return nil, s.FailRead
	}
	content, ok := s.docs[handle.ID]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (s *Store) Create(_ context.Context, name string, content []byte, containerID string) (*docstore.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return nil, s.FailCreate
	}
	k := key(name, containerID)
	stored := make([]byte, len(content))
	copy(stored, content)
	s.docs[k] = stored
	return &docstore.Handle{ID: k, Name: name}, nil
}

func (s *Store) Update(_ context.Context, handle *docstore.Handle, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	if _, ok := s.docs[handle.ID]; !ok {
		return docstore.ErrNotFound
	}
	stored := make([]byte, len(content))
	copy(stored, content)
	s.docs[handle.ID] = stored
	return nil
}

// Content returns the raw stored content, for test assertions.
func (s *Store) Content(name, containerID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.docs[key(name, containerID)]
	return content, ok
}
