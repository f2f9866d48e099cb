package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// ProduceRequest una corrida de producción de un solo ítem.
type ProduceRequest struct {
	RecipeID string          `json:"recipe_id" validate:"required,uuid"`
	Batches  decimal.Decimal `json:"batches"`
}

// BatchProduceRequest un lote de producciones que se valida y compromete como
// unidad (todo o nada).
type BatchProduceRequest struct {
	Items []ProduceRequest `json:"items" validate:"required,min=1,dive"`
}

// ProductionLineResponse una línea del desglose congelado.
type ProductionLineResponse struct {
	Kind          string          `json:"kind"`
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

// ProductionLogResponse un registro de producción.
type ProductionLogResponse struct {
	ID               string                   `json:"id"`
	RecipeID         string                   `json:"recipe_id"`
	QuantityProduced decimal.Decimal          `json:"quantity_produced"`
	Timestamp        time.Time                `json:"timestamp"`
	TotalCost        decimal.Decimal          `json:"total_cost"`
	CostPerUnit      decimal.Decimal          `json:"cost_per_unit"`
	Breakdown        []ProductionLineResponse `json:"breakdown"`
	CreatedBy        string                   `json:"created_by,omitempty"`
}

// ToProductionLogResponse mapea el registro con su desglose.
func ToProductionLogResponse(pl *entity.ProductionLog) ProductionLogResponse {
	out := ProductionLogResponse{
		ID:               pl.ID,
		RecipeID:         pl.RecipeID,
		QuantityProduced: pl.QuantityProduced,
		Timestamp:        pl.Timestamp,
		TotalCost:        pl.TotalCost,
		CostPerUnit:      pl.CostPerUnit,
		Breakdown:        make([]ProductionLineResponse, 0, len(pl.Breakdown)),
		CreatedBy:        pl.CreatedBy,
	}
	for _, l := range pl.Breakdown {
		out.Breakdown = append(out.Breakdown, ProductionLineResponse{
			Kind:          string(l.Kind),
			ComponentID:   l.ComponentID,
			ComponentName: l.ComponentName,
			SupplierID:    l.SupplierID,
			SKU:           l.SKU,
			Quantity:      l.Quantity,
			UnitCost:      l.UnitCost,
			LineCost:      l.LineCost,
			IsDeficit:     l.IsDeficit,
			Informational: l.Informational,
		})
	}
	return out
}

// UnitCostResponse costo unitario resuelto de una receta.
type UnitCostResponse struct {
	RecipeID string          `json:"recipe_id"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Strict   bool            `json:"strict"`
}
