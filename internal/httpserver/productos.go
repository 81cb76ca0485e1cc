package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smerino/gestion/internal/logging"
	authmw "github.com/smerino/gestion/internal/middleware/auth"
	"github.com/smerino/gestion/internal/tenantstore"
)

// ProductosHTTP works purely against the store the middleware
// resolved for the caller's tenant; it never routes by itself.
type ProductosHTTP struct{}

func (h *ProductosHTTP) List(c echo.Context) error {
	store := authmw.StoreFrom(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing tenant id")
	}

	var productos []tenantstore.Producto
	if err := store.WithContext(c.Request().Context()).Order("id").Find(&productos).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("list_productos_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, productos)
}

func (h *ProductosHTTP) Create(c echo.Context) error {
	store := authmw.StoreFrom(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing tenant id")
	}

	var req struct {
		Nombre      string  `json:"nombre"`
		Descripcion string  `json:"descripcion"`
		Precio      float64 `json:"precio"`
		Stock       uint    `json:"stock"`
		ProveedorID *uint   `json:"proveedor_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Nombre == "" || req.Precio < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	producto := tenantstore.Producto{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Stock:       req.Stock,
		ProveedorID: req.ProveedorID,
	}
	if err := store.WithContext(c.Request().Context()).Create(&producto).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("create_producto_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusCreated, producto)
}
