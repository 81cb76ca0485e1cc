package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smerino/gestion/internal/logging"
	"github.com/smerino/gestion/pkg/tokens"
)

// RequireAuth extracts and verifies the bearer access credential,
// puts the claims into the request and, for tenant-bound callers,
// attaches the tenant's store so handlers never touch routing.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims, err := tokens.AccessClaimsFromToken(raw, m.AccessSecret)
		if err != nil {
			if errors.Is(err, tokens.ErrExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "token invalid")
		}

		c.Set(claimsKey, claims)

		if claims.TenantID != "" && m.Stores != nil {
			store, err := m.Stores.Resolve(c.Request().Context(), claims.TenantID)
			if err != nil {
				logging.FromContext(c.Request().Context()).
					Error("tenant_store_resolve_failed", "tenant_id", claims.TenantID, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "tenant store unavailable")
			}
			c.Set(storeKey, store)
		}

		return next(c)
	}
}
