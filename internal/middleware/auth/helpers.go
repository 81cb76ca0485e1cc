package auth

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/tenantstore"
	"github.com/smerino/gestion/pkg/tokens"
)

const (
	claimsKey = "auth_claims"
	storeKey  = "tenant_store"
)

// Middleware guards routes with the verified access credential and
// resolves the caller's tenant store into the request.
type Middleware struct {
	AccessSecret []byte
	Stores       *tenantstore.Manager
}

func NewMiddleware(accessSecret []byte, stores *tenantstore.Manager) *Middleware {
	return &Middleware{AccessSecret: accessSecret, Stores: stores}
}

// ClaimsFrom returns the verified claims set by RequireAuth, or nil.
func ClaimsFrom(c echo.Context) *tokens.AccessClaims {
	if v, ok := c.Get(claimsKey).(*tokens.AccessClaims); ok {
		return v
	}
	return nil
}

// StoreFrom returns the tenant store resolved for the caller, or nil
// for callers without a tenant (superadmin).
func StoreFrom(c echo.Context) *gorm.DB {
	if v, ok := c.Get(storeKey).(*gorm.DB); ok {
		return v
	}
	return nil
}
