package repo

import (
	"errors"

	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

var (
	ErrUsuarioNotFound = errors.New("usuario not found")
	ErrEmpresaNotFound = errors.New("empresa not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrRefreshNotFound = errors.New("refresh token not found")
	ErrResetNotFound   = errors.New("reset token not found")
	ErrResetUsed       = errors.New("reset token already consumed")
)
