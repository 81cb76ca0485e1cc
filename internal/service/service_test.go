package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/hash"
	"github.com/smerino/gestion/internal/models"
	"github.com/smerino/gestion/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A shared in-memory sqlite needs a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Empresa{},
		&models.Usuario{},
		&models.RefreshToken{},
		&models.PasswordResetToken{},
	))
	return db
}

func newTestService(t *testing.T) *SessionService {
	t.Helper()
	return &SessionService{
		Repo:          repo.GormRepo{DB: newTestDB(t)},
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		ResetBaseURL:  "http://localhost:8080",
	}
}

func seedEmpresa(t *testing.T, svc *SessionService, nombre string) *models.Empresa {
	t.Helper()

	e := &models.Empresa{
		ID:     uuid.New(),
		Nombre: nombre,
		Slug:   Slugify(nombre),
		Activa: true,
	}
	require.NoError(t, svc.Repo.DB.Create(e).Error)
	return e
}

func seedUsuario(t *testing.T, svc *SessionService, email, password, rol string, empresaID *uuid.UUID) *models.Usuario {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	u := &models.Usuario{
		ID:           uuid.New(),
		EmpresaID:    empresaID,
		Email:        NormalizeEmail(email),
		PasswordHash: pwHash,
		Nombre:       "Usuario Test",
		Rol:          rol,
		Activo:       true,
	}
	require.NoError(t, svc.Repo.CreateUsuario(context.Background(), u))
	return u
}
