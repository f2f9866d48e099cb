package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineKind tipo de línea del desglose de una producción.
type LineKind string

// Líneas del desglose.
const (
	LineMaterial   LineKind = "material"   // consumo de materia prima por proveedor
	LinePremake    LineKind = "premake"    // consumo de premezcla anidada
	LinePreproduct LineKind = "preproduct" // consumo de preproducto anidado
	LinePackaging  LineKind = "packaging"  // empaque, solo informativo
)

// ProductionLine línea del desglose de una producción, para trazabilidad.
// Las líneas de material quedan atribuidas al proveedor (y SKU) del que se
// consumió; IsDeficit marca consumo asignado al primario por encima de su
// stock registrado. Informational excluye la línea del costo total
// (empaque: se costea en la venta, no en la producción).
type ProductionLine struct {
	Kind          LineKind        `json:"kind"`
	ComponentID   string          `json:"component_id"`
	ComponentName string          `json:"component_name,omitempty"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	SKU           string          `json:"sku,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	LineCost      decimal.Decimal `json:"line_cost"`
	IsDeficit     bool            `json:"is_deficit,omitempty"`
	Informational bool            `json:"informational,omitempty"`
}

// ProductionLog registro de una corrida de producción. Es a la vez un evento
// del ledger: el replay infiere de él el consumo de materias primas y de
// premezclas/preproductos anidados (sin eventos de deducción separados, para
// no contar doble).
type ProductionLog struct {
	ID               string
	RecipeID         string
	QuantityProduced decimal.Decimal // en lotes/recetas
	Timestamp        time.Time
	TotalCost        decimal.Decimal
	CostPerUnit      decimal.Decimal
	Breakdown        []ProductionLine
	CreatedBy        string
	CreatedAt        time.Time
}
