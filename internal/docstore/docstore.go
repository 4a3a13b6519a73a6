// Package docstore abstracts the remote file store that holds registry
// documents. Semantics are deliberately narrow: locate a named document
// inside a container, read it whole, create it, or overwrite it whole. The
// sync engine never needs listing, deletion, or partial writes.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Find when no document with the given name exists
// in the container. It is the only docstore error the sync engine treats as
// expected; everything else propagates.
var ErrNotFound = errors.New("document not found")

// Handle identifies a located document for subsequent Read/Update calls.
// ID is driver-specific (a file id, an object key, a path).
type Handle struct {
	ID   string
	Name string
}

// Store is the remote document store collaborator.
type Store interface {
	// Find locates the document by name within containerID. Returns
	// ErrNotFound if absent.
	Find(ctx context.Context, name, containerID string) (*Handle, error)
	// Read returns the document's full content.
	Read(ctx context.Context, handle *Handle) ([]byte, error)
	// Create stores a new document and returns its handle.
	Create(ctx context.Context, name string, content []byte, containerID string) (*Handle, error)
	// Update overwrites the document's content in full.
	Update(ctx context.Context, handle *Handle, content []byte) error
}
