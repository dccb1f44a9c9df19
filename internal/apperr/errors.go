package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidKind   = errors.New("invalid artifact kind")
	ErrMissingID     = errors.New("artifact id is required")
)
