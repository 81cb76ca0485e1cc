package tenantstore

import "time"

// Tenant-scoped business rows. Each empresa gets its own store, so
// none of these carry an empresa_id column.

type Proveedor struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre   string `gorm:"not null"                 json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

type Producto struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre      string  `gorm:"not null"                 json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `gorm:"not null"                 json:"precio"`
	Stock       uint    `json:"stock"`
	ProveedorID *uint   `gorm:"index"                    json:"proveedor_id,omitempty"`
}

type Pedido struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProveedorID *uint     `gorm:"index"                    json:"proveedor_id,omitempty"`
	Estado      string    `gorm:"not null;default:pendiente" json:"estado"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}
