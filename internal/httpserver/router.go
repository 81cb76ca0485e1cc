package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "github.com/smerino/gestion/internal/middleware/auth"
	"github.com/smerino/gestion/internal/models"
)

type Deps struct {
	Auth      *AuthHTTP
	Admin     *AdminHTTP
	Productos *ProductosHTTP
	AuthMw    *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	v1.POST("/auth/login", d.Auth.Login)
	v1.POST("/auth/refresh", d.Auth.Refresh)
	v1.POST("/auth/logout", d.Auth.Logout)
	v1.POST("/auth/reset-request", d.Auth.ResetRequest)
	v1.POST("/auth/reset", d.Auth.ResetConfirm)

	private := v1.Group("", d.AuthMw.RequireAuth)

	private.GET("/auth/me", d.Auth.Me)

	admin := private.Group("/admin", d.AuthMw.RequireRol(models.RolAdmin, models.RolSuperadmin))
	admin.POST("/empresas", d.Admin.CreateEmpresa, d.AuthMw.RequireRol(models.RolSuperadmin))
	admin.POST("/usuarios", d.Admin.CreateUsuario)
	admin.GET("/usuarios", d.Admin.ListUsuarios)
	admin.PATCH("/usuarios/:id/desactivar", d.Admin.DeactivateUsuario)
	admin.DELETE("/usuarios/:id", d.Admin.DeleteUsuario)

	productos := private.Group("/productos")
	productos.GET("", d.Productos.List)
	productos.POST("", d.Productos.Create)
}
