package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smerino/gestion/internal/events"
	"github.com/smerino/gestion/internal/hash"
	"github.com/smerino/gestion/internal/logging"
	"github.com/smerino/gestion/internal/models"
	"github.com/smerino/gestion/internal/repo"
)

type EmpresaCreada struct {
	EmpresaID uuid.UUID `json:"empresa_id"`
	Slug      string    `json:"slug"`
	AdminID   uuid.UUID `json:"admin_id"`
}

// CreateEmpresa provisions a new tenant: empresa row, initial admin
// user and the tenant's backing store. Superadmin only; the route
// guard enforces that.
func (s *SessionService) CreateEmpresa(ctx context.Context, nombre, adminEmail, adminPassword, adminNombre string) (*EmpresaCreada, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_empresa")

	adminEmail = NormalizeEmail(adminEmail)
	if nombre == "" || adminEmail == "" || adminPassword == "" || adminNombre == "" {
		return nil, ErrValidation
	}

	empresaID := uuid.New()
	slug, err := s.uniqueSlug(ctx, nombre, empresaID)
	if err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(adminPassword)
	if err != nil {
		return nil, err
	}

	empresa := &models.Empresa{
		ID:     empresaID,
		Nombre: nombre,
		Slug:   slug,
		Activa: true,
	}
	admin := &models.Usuario{
		ID:           uuid.New(),
		EmpresaID:    &empresaID,
		Email:        adminEmail,
		PasswordHash: pwHash,
		Nombre:       adminNombre,
		Rol:          models.RolAdmin,
		Activo:       true,
	}

	if err := s.Repo.CreateEmpresaConAdmin(ctx, empresa, admin); err != nil {
		return nil, err
	}

	// Eager provisioning; the router would also create the store
	// lazily on first request, so a failure here is not fatal.
	if s.Stores != nil {
		if _, err := s.Stores.Resolve(ctx, empresaID.String()); err != nil {
			l.Warn("tenant_store_provision_failed", "empresa_id", empresaID, "error", err)
		}
	}

	s.publish(ctx, events.EventEmpresaCreada, empresaID.String(), empresaID.String(), map[string]string{"slug": slug})
	s.record(ctx, "empresa.creada", admin.ID.String(), empresaID.String(), slug)
	l.Info("empresa_created", "empresa_id", empresaID, "slug", slug)

	return &EmpresaCreada{EmpresaID: empresaID, Slug: slug, AdminID: admin.ID}, nil
}

// CreateUser registers a user inside empresaID. The email must be
// unused anywhere in the system, not just within the tenant.
func (s *SessionService) CreateUser(ctx context.Context, empresaID uuid.UUID, email, password, nombre, rol string) (*models.Usuario, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" || nombre == "" {
		return nil, ErrValidation
	}
	if !models.RolValido(rol) || rol == models.RolSuperadmin {
		return nil, ErrValidation
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.Usuario{
		ID:           uuid.New(),
		EmpresaID:    &empresaID,
		Email:        email,
		PasswordHash: pwHash,
		Nombre:       nombre,
		Rol:          rol,
		Activo:       true,
	}
	if err := s.Repo.CreateUsuario(ctx, u); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUsuarioCreado, u.ID.String(), empresaID.String(), map[string]string{"rol": rol})
	s.record(ctx, "usuario.creado", u.ID.String(), empresaID.String(), "")
	return u, nil
}

func (s *SessionService) ListUsers(ctx context.Context, empresaID uuid.UUID) ([]models.Usuario, error) {
	return s.Repo.ListUsuarios(ctx, empresaID)
}

func (s *SessionService) DeactivateUser(ctx context.Context, id, empresaID uuid.UUID) error {
	if err := s.Repo.DeactivateUsuario(ctx, id, empresaID); err != nil {
		if errors.Is(err, repo.ErrUsuarioNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *SessionService) DeleteUser(ctx context.Context, id, empresaID uuid.UUID) error {
	if err := s.Repo.DeleteUsuario(ctx, id, empresaID); err != nil {
		if errors.Is(err, repo.ErrUsuarioNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
