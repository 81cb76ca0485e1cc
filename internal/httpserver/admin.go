package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smerino/gestion/internal/logging"
	authmw "github.com/smerino/gestion/internal/middleware/auth"
	"github.com/smerino/gestion/internal/models"
	"github.com/smerino/gestion/internal/service"
)

type AdminHTTP struct {
	Svc *service.SessionService
}

func (h *AdminHTTP) CreateEmpresa(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_create_empresa")

	var req struct {
		Nombre        string `json:"nombre"`
		AdminEmail    string `json:"admin_email"`
		AdminPassword string `json:"admin_password"`
		AdminNombre   string `json:"admin_nombre"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.CreateEmpresa(ctx, req.Nombre, req.AdminEmail, req.AdminPassword, req.AdminNombre)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		case errors.Is(err, service.ErrDuplicateEmail):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		l.Error("create_empresa_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *AdminHTTP) CreateUsuario(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_create_usuario")

	var req struct {
		EmpresaID string `json:"empresa_id"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Nombre    string `json:"nombre"`
		Rol       string `json:"rol"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	empresaID, err := empresaIDForCaller(c, req.EmpresaID)
	if err != nil {
		return err
	}

	u, err := h.Svc.CreateUser(ctx, empresaID, req.Email, req.Password, req.Nombre, req.Rol)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		case errors.Is(err, service.ErrDuplicateEmail):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		l.Error("create_usuario_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusCreated, u)
}

func (h *AdminHTTP) ListUsuarios(c echo.Context) error {
	empresaID, err := empresaIDForCaller(c, c.QueryParam("empresa_id"))
	if err != nil {
		return err
	}

	usuarios, err := h.Svc.ListUsers(c.Request().Context(), empresaID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, usuarios)
}

func (h *AdminHTTP) DeactivateUsuario(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	empresaID, err := empresaIDForCaller(c, c.QueryParam("empresa_id"))
	if err != nil {
		return err
	}

	if err := h.Svc.DeactivateUser(c.Request().Context(), id, empresaID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "usuario not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "usuario deactivated"})
}

func (h *AdminHTTP) DeleteUsuario(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	empresaID, err := empresaIDForCaller(c, c.QueryParam("empresa_id"))
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteUser(c.Request().Context(), id, empresaID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "usuario not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "usuario deleted"})
}

// empresaIDForCaller scopes admin operations. Tenant admins always
// operate on their own empresa; superadmins must name one explicitly.
func empresaIDForCaller(c echo.Context, explicit string) (uuid.UUID, error) {
	claims := authmw.ClaimsFrom(c)
	if claims == nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	if claims.Rol == models.RolSuperadmin {
		if explicit == "" {
			return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "missing empresa_id")
		}
		id, err := uuid.Parse(explicit)
		if err != nil {
			return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid empresa_id")
		}
		return id, nil
	}

	id, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "missing tenant id")
	}
	return id, nil
}
