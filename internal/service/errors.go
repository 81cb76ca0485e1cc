package service

import (
	"errors"

	"github.com/smerino/gestion/internal/repo"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenUsed          = errors.New("token already used")
	ErrNotFound           = errors.New("not found")

	// Email uniqueness is global; the repo detects the collision.
	ErrDuplicateEmail = repo.ErrDuplicateEmail
)
