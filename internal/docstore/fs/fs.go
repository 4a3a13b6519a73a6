// Package fs stores registry documents as plain files under a base
// directory. Containers map to subdirectories. It is the development default
// and doubles as a cheap offline backend.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/pantrysync/internal/docstore"
)

type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) Find(_ context.Context, name, containerID string) (*docstore.Handle, error) {
	path, err := s.safeJoin(containerID, name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}
	return &docstore.Handle{ID: path, Name: name}, nil
}

func (s *Store) Read(_ context.Context, handle *docstore.Handle) ([]byte, error) {
	content, err := os.ReadFile(handle.ID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return content, nil
}

func (s *Store) Create(_ context.Context, name string, content []byte, containerID string) (*docstore.Handle, error) {
	path, err := s.safeJoin(containerID, name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create container directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return &docstore.Handle{ID: path, Name: name}, nil
}

func (s *Store) Update(_ context.Context, handle *docstore.Handle, content []byte) error {
	if _, err := os.Stat(handle.ID); err != nil {
		if os.IsNotExist(err) {
			return docstore.ErrNotFound
		}
		return fmt.Errorf("failed to stat document: %w", err)
	}
	if err := os.WriteFile(handle.ID, content, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// safeJoin resolves containerID/name relative to basePath and rejects
// directory traversal.
func (s *Store) safeJoin(containerID, name string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, containerID, name))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
