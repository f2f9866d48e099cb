package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityKind clase de entidad con stock propio.
type EntityKind string

// Entidades que llevan ledger.
const (
	KindRawMaterial EntityKind = "raw_material"
	KindPackaging   EntityKind = "packaging"
	KindRecipe      EntityKind = "recipe" // premezclas y preproductos producidos
)

// ValidEntityKind indica si el valor pertenece al catálogo.
func ValidEntityKind(k EntityKind) bool {
	switch k {
	case KindRawMaterial, KindPackaging, KindRecipe:
		return true
	}
	return false
}

// EventAction acción de un evento de stock.
type EventAction string

// Acciones del ledger. Las correcciones se modelan como nuevos eventos add
// con cantidad negativa, nunca como edición de eventos históricos.
const (
	ActionSet EventAction = "set" // fija la base (conteo físico)
	ActionAdd EventAction = "add" // suma/resta sobre la base vigente
)

// StockScope identifica el alcance de un evento o consulta de stock: una
// entidad concreta, opcionalmente acotada a un proveedor y/o SKU (solo
// aplica a materias primas con varios vínculos).
type StockScope struct {
	Kind       EntityKind
	EntityID   string
	SupplierID string
	SKU        string
}

// Narrowed indica si el alcance está acotado a proveedor o SKU.
func (s StockScope) Narrowed() bool {
	return s.SupplierID != "" || s.SKU != ""
}

// Aggregate devuelve el alcance sin acotar (toda la entidad).
func (s StockScope) Aggregate() StockScope {
	return StockScope{Kind: s.Kind, EntityID: s.EntityID}
}

// Matches indica si un evento cae dentro del alcance. Un alcance agregado
// incluye los eventos etiquetados con cualquier proveedor/SKU.
func (s StockScope) Matches(e *StockEvent) bool {
	if e.Scope.Kind != s.Kind || e.Scope.EntityID != s.EntityID {
		return false
	}
	if s.SupplierID != "" && e.Scope.SupplierID != s.SupplierID {
		return false
	}
	if s.SKU != "" && e.Scope.SKU != s.SKU {
		return false
	}
	return true
}

// StockEvent entrada del ledger (append-only). El stock vigente de un alcance
// se deriva por replay: último set, más los add posteriores, menos el consumo
// implícito de los registros de producción posteriores.
type StockEvent struct {
	ID        string
	Scope     StockScope
	Action    EventAction
	Quantity  decimal.Decimal // con signo en add, para correcciones
	Timestamp time.Time
	Note      string
	CreatedBy string
	CreatedAt time.Time
}
