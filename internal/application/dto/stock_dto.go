package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/application/ledger"
	"github.com/jhoicas/Costeo-api/internal/application/pricing"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// StockQuery alcance de una consulta de stock. Supplier/SKU solo aplican a
// materias primas.
type StockQuery struct {
	SupplierID string `query:"supplier_id" validate:"omitempty,uuid"`
	SKU        string `query:"sku" validate:"omitempty,max=100"`
}

// StockReadingResponse stock derivado de una entidad.
type StockReadingResponse struct {
	Kind       string          `json:"kind"`
	EntityID   string          `json:"entity_id"`
	SupplierID string          `json:"supplier_id,omitempty"`
	SKU        string          `json:"sku,omitempty"`
	Available  decimal.Decimal `json:"available"`
	Signed     decimal.Decimal `json:"signed"`
	Unlimited  bool            `json:"unlimited"`
	AsOf       time.Time       `json:"as_of"`
}

// ToStockReadingResponse mapea la lectura del ledger.
func ToStockReadingResponse(scope entity.StockScope, r ledger.Reading, asOf time.Time) StockReadingResponse {
	return StockReadingResponse{
		Kind:       string(scope.Kind),
		EntityID:   scope.EntityID,
		SupplierID: scope.SupplierID,
		SKU:        scope.SKU,
		Available:  r.Available,
		Signed:     r.Signed,
		Unlimited:  r.Unlimited,
		AsOf:       asOf,
	}
}

// AllocationLineResponse una línea de la previsualización de asignación:
// cuánto se tomaría de cada proveedor y a qué costo efectivo.
type AllocationLineResponse struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LineCost     decimal.Decimal `json:"line_cost"`
	IsDeficit    bool            `json:"is_deficit"`
}

// ToAllocationLineResponse mapea la línea del resolutor de precios.
func ToAllocationLineResponse(l pricing.AllocationLine) AllocationLineResponse {
	return AllocationLineResponse{
		SupplierID:   l.SupplierID,
		SupplierName: l.SupplierName,
		SKU:          l.SKU,
		Quantity:     l.Quantity,
		UnitCost:     l.UnitCost,
		LineCost:     l.LineCost,
		IsDeficit:    l.IsDeficit,
	}
}

// AdjustmentRequest corrección manual de stock (evento add con signo).
type AdjustmentRequest struct {
	SupplierID string          `json:"supplier_id" validate:"omitempty,uuid"`
	SKU        string          `json:"sku" validate:"omitempty,max=100"`
	Quantity   decimal.Decimal `json:"quantity"`
	Note       string          `json:"note" validate:"omitempty,max=500"`
}

// CountRequest conteo físico de stock.
type CountRequest struct {
	SupplierID  string          `json:"supplier_id" validate:"omitempty,uuid"`
	SKU         string          `json:"sku" validate:"omitempty,max=100"`
	PhysicalQty decimal.Decimal `json:"physical_qty"`
}

// StockEventResponse un evento del ledger.
type StockEventResponse struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	EntityID   string          `json:"entity_id"`
	SupplierID string          `json:"supplier_id,omitempty"`
	SKU        string          `json:"sku,omitempty"`
	Action     string          `json:"action"`
	Quantity   decimal.Decimal `json:"quantity"`
	Timestamp  time.Time       `json:"timestamp"`
	Note       string          `json:"note,omitempty"`
	CreatedBy  string          `json:"created_by,omitempty"`
}

// ToStockEventResponse mapea el evento.
func ToStockEventResponse(ev *entity.StockEvent) StockEventResponse {
	return StockEventResponse{
		ID:         ev.ID,
		Kind:       string(ev.Scope.Kind),
		EntityID:   ev.Scope.EntityID,
		SupplierID: ev.Scope.SupplierID,
		SKU:        ev.Scope.SKU,
		Action:     string(ev.Action),
		Quantity:   ev.Quantity,
		Timestamp:  ev.Timestamp,
		Note:       ev.Note,
		CreatedBy:  ev.CreatedBy,
	}
}

// StockAuditResponse una auditoría de conteo con su varianza valorizada.
type StockAuditResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	EntityID     string          `json:"entity_id"`
	SupplierID   string          `json:"supplier_id,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	SystemQty    decimal.Decimal `json:"system_qty"`
	PhysicalQty  decimal.Decimal `json:"physical_qty"`
	Variance     decimal.Decimal `json:"variance"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	VarianceCost decimal.Decimal `json:"variance_cost"`
	Auditor      string          `json:"auditor"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ToStockAuditResponse mapea la auditoría.
func ToStockAuditResponse(a *entity.StockAudit) StockAuditResponse {
	return StockAuditResponse{
		ID:           a.ID,
		Kind:         string(a.Scope.Kind),
		EntityID:     a.Scope.EntityID,
		SupplierID:   a.Scope.SupplierID,
		SKU:          a.Scope.SKU,
		SystemQty:    a.SystemQty,
		PhysicalQty:  a.PhysicalQty,
		Variance:     a.Variance,
		UnitCost:     a.UnitCost,
		VarianceCost: a.VarianceCost,
		Auditor:      a.Auditor,
		Timestamp:    a.Timestamp,
	}
}
