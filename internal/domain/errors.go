package domain

import "errors"

var (
	// ErrValidation marks input that fails domain validation.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write rejected by a uniqueness constraint. For the
	// send ledger this means another sweep already recorded a success for the
	// same key and the caller must treat the write as a no-op.
	ErrConflict = errors.New("conflict")
)
