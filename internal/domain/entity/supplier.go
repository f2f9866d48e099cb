package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSupplierName nombre del proveedor por defecto que se asigna como
// primario a las materias primas creadas sin vínculos de proveedor.
const DefaultSupplierName = "Proveedor general"

// Supplier representa un proveedor de materias primas. El descuento se aplica
// multiplicativamente a cualquier costo vinculado: efectivo = listado * (1 - descuento/100).
type Supplier struct {
	ID          string
	Name        string
	Contact     string
	Phone       string
	Email       string
	DiscountPct decimal.Decimal // 0–100
	IsDefault   bool            // proveedor de respaldo creado por EnsureDefault
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
