package store

import "errors"

// Sentinel errors returned by Gateway implementations.
var (
	// ErrNotFound covers both missing rows and rows owned by another user.
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when a unique constraint rejects a write.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrReferenced is returned when a row cannot be removed while others still point at it.
	ErrReferenced = errors.New("resource still referenced")
)
