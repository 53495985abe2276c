package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflicting state")
	ErrRaceLost              = errors.New("superseded by a newer action")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
