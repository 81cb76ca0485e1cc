package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smerino/gestion/internal/logging"
	authmw "github.com/smerino/gestion/internal/middleware/auth"
	"github.com/smerino/gestion/internal/service"
)

type AuthHTTP struct {
	Svc *service.SessionService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrValidation) {
			l.Warn("login_failed", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"user":          perfilJSON(res.Usuario),
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
		case errors.Is(err, service.ErrTokenInvalid):
			return echo.NewHTTPError(http.StatusUnauthorized, "token invalid")
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
	})
}

// Logout always answers 200; revocation is best-effort.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		h.Svc.Logout(ctx, req.RefreshToken)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me answers from the verified credential alone, no store lookup.
func (h *AuthHTTP) Me(c echo.Context) error {
	claims := authmw.ClaimsFrom(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":             claims.Subject,
		"nombre":         claims.Nombre,
		"email":          claims.Email,
		"rol":            claims.Rol,
		"empresa_nombre": claims.EmpresaNombre,
		"tenant_id":      claims.TenantID,
	})
}

// ResetRequest answers 200 whether or not the email exists.
func (h *AuthHTTP) ResetRequest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_request")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		l.Error("reset_request_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

func (h *AuthHTTP) ResetConfirm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_confirm")

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ResetPassword(ctx, req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		case errors.Is(err, service.ErrTokenInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, "token invalid")
		case errors.Is(err, service.ErrTokenUsed):
			return echo.NewHTTPError(http.StatusBadRequest, "token already used")
		case errors.Is(err, service.ErrTokenExpired):
			return echo.NewHTTPError(http.StatusBadRequest, "token expired")
		}
		l.Error("reset_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func perfilJSON(p service.Perfil) echo.Map {
	return echo.Map{
		"id":             p.ID,
		"nombre":         p.Nombre,
		"email":          p.Email,
		"rol":            p.Rol,
		"empresa_nombre": p.EmpresaNombre,
		"tenant_id":      p.TenantID,
	}
}
