package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Packaging representa un insumo de empaque comprado por paquete
// (ej. 100 cajas por bulto).
type Packaging struct {
	ID              string
	Name            string
	QtyPerPackage   decimal.Decimal // unidades por paquete
	PricePerPackage decimal.Decimal
	IsArchived      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PricePerUnit devuelve el precio por unidad individual de empaque.
// QtyPerPackage <= 0 devuelve cero (guardia contra división por cero).
func (p *Packaging) PricePerUnit() decimal.Decimal {
	if p.QtyPerPackage.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return p.PricePerPackage.Div(p.QtyPerPackage)
}
