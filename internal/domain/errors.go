package domain

import "errors"

var (
	// ErrEntityNotFound is returned by update operations when the target id
	// is absent from current.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrCategoryNotFound is returned when an ingredient references a
	// category id that does not resolve.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryInUse is returned when deleting a category that is still
	// referenced by at least one ingredient.
	ErrCategoryInUse = errors.New("category is referenced by ingredients")

	// ErrCorruptDocument is returned when a remote registry document exists
	// but cannot be parsed. It must surface to the caller, never be treated
	// as an absent document.
	ErrCorruptDocument = errors.New("registry document is corrupt")

	// ErrStaleWrite is returned by push when the remote document changed
	// since the last pull. The caller should pull and retry.
	ErrStaleWrite = errors.New("remote registry changed since last sync")
)
