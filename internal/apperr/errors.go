// Package apperr defines the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidPath   = errors.New("invalid path")

	// Colour algebra error kinds.
	ErrParse          = errors.New("parse error")
	ErrIndexMisuse    = errors.New("index misuse")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNonReducible   = errors.New("non-reducible term")
)
