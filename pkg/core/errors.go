package core

import "errors"

// Common errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrReadOnly     = errors.New("storage is in read-only mode")
	ErrPersist      = errors.New("failed to persist notes")
	ErrEmptyTag     = errors.New("tag name cannot be empty")
	ErrDuplicateTag = errors.New("tag already exists")
	ErrUnsupported  = errors.New("operation not supported by this variant")
	ErrDuplicateID  = errors.New("could not allocate a unique note id")
)
