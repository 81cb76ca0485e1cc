package tokens

import "github.com/golang-jwt/jwt/v5"

// AccessClaims carries everything authorization needs, so no DB
// lookup happens after signature verification.
type AccessClaims struct {
	Rol           string `json:"rol"`
	TenantID      string `json:"tenant_id,omitempty"`
	Nombre        string `json:"nombre,omitempty"`
	EmpresaNombre string `json:"empresa_nombre,omitempty"`
	Email         string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the subject and a jti; everything else
// is re-resolved against the store on exchange.
type RefreshClaims struct {
	jwt.RegisteredClaims
}
