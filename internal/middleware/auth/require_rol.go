package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRol composes with RequireAuth and rejects callers whose rol
// is not in the allowlist.
func (m *Middleware) RequireRol(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			if _, ok := allowed[claims.Rol]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
