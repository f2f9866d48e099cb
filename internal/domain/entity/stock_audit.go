package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAudit registro de conciliación creado cuando un conteo físico fija el
// stock (evento set). Guarda la cantidad derivada del sistema justo antes,
// la física, la varianza con signo y su valorización.
type StockAudit struct {
	ID           string
	Scope        StockScope
	SystemQty    decimal.Decimal // valor con signo (sin clamp) al momento del conteo
	PhysicalQty  decimal.Decimal
	Variance     decimal.Decimal // física - sistema
	UnitCost     decimal.Decimal
	VarianceCost decimal.Decimal // Variance * UnitCost
	Auditor      string
	Timestamp    time.Time
	CreatedAt    time.Time
}
