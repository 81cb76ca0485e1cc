package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolSuperadmin = "superadmin"
	RolAdmin      = "admin"
	RolEmpleado   = "empleado"
)

func RolValido(rol string) bool {
	switch rol {
	case RolSuperadmin, RolAdmin, RolEmpleado:
		return true
	}
	return false
}

type Usuario struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"  json:"id"`
	EmpresaID    *uuid.UUID `gorm:"type:uuid;index"       json:"empresa_id,omitempty"`
	Email        string     `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string     `gorm:"not null"              json:"-"`
	Nombre       string     `gorm:"not null"              json:"nombre"`
	Rol          string     `gorm:"not null"              json:"rol"`
	Activo       bool       `gorm:"default:true"          json:"activo"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Empresa struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nombre    string    `gorm:"not null"             json:"nombre"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Activa    bool      `gorm:"default:true"         json:"activa"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshToken stores only the sha256 of the raw token, never the raw
// value. One row per issued refresh credential; rotation revokes the
// old row and inserts a new one.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	UsuarioID uuid.UUID `gorm:"type:uuid;index;not null" json:"usuario_id"`
	TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	Revoked   bool      `gorm:"default:false"        json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// PasswordResetToken is single-use and short-lived. At most one live
// row per user; requesting a new reset deletes the previous rows.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	UsuarioID uuid.UUID `gorm:"type:uuid;index;not null" json:"usuario_id"`
	TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	Used      bool      `gorm:"default:false"        json:"used"`
	CreatedAt time.Time `json:"created_at"`
}
