// Package pricing implementa el resolutor de precios de proveedor: costo
// efectivo con descuento y asignación determinista de consumo entre los
// proveedores de una materia prima.
package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/application/ledger"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// StockReader stock vigente por alcance (lo satisface *ledger.Service).
type StockReader interface {
	CurrentStock(ctx context.Context, scope entity.StockScope, asOf time.Time) (ledger.Reading, error)
}

// AllocationLine una asignación de consumo a un proveedor concreto.
// IsDeficit marca el remanente asignado al primario por encima de su stock
// registrado ("usamos material que oficialmente no teníamos").
type AllocationLine struct {
	SupplierID   string
	SupplierName string
	SKU          string
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal // costo efectivo (con descuento)
	LineCost     decimal.Decimal
	IsDeficit    bool
}

// Resolver asigna consumo entre proveedores según stock disponible.
type Resolver struct {
	stocks StockReader
}

// NewResolver construye el resolutor sobre un lector de stock.
func NewResolver(stocks StockReader) *Resolver {
	return &Resolver{stocks: stocks}
}

// Allocate reparte required entre los vínculos del material: primario
// primero y el resto por nombre (orden determinista), consumiendo con avidez
// hasta el stock disponible de cada uno. El remanente no cubierto se asigna
// al primario como déficit. Materiales ilimitados devuelven una única línea
// sintética al costo del primario.
func (r *Resolver) Allocate(ctx context.Context, m *entity.RawMaterial, required decimal.Decimal, asOf time.Time) ([]AllocationLine, error) {
	if required.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	links := m.OrderedLinks()
	if len(links) == 0 {
		return nil, domain.ErrNoSupplierLinks
	}

	if m.IsUnlimited {
		l := links[0]
		cost := l.EffectiveUnitCost()
		return []AllocationLine{{
			SupplierID:   l.SupplierID,
			SupplierName: l.SupplierName,
			SKU:          l.SKU,
			Quantity:     required,
			UnitCost:     cost,
			LineCost:     required.Mul(cost),
		}}, nil
	}

	var out []AllocationLine
	remaining := required
	for _, l := range links {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		scope := entity.StockScope{
			Kind:       entity.KindRawMaterial,
			EntityID:   m.ID,
			SupplierID: l.SupplierID,
			SKU:        l.SKU,
		}
		reading, err := r.stocks.CurrentStock(ctx, scope, asOf)
		if err != nil {
			return nil, err
		}
		take := decimal.Min(reading.Available, remaining)
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}
		cost := l.EffectiveUnitCost()
		out = append(out, AllocationLine{
			SupplierID:   l.SupplierID,
			SupplierName: l.SupplierName,
			SKU:          l.SKU,
			Quantity:     take,
			UnitCost:     cost,
			LineCost:     take.Mul(cost),
		})
		remaining = remaining.Sub(take)
	}

	// Déficit: lo no cubierto se carga al primario (o al primero) sin
	// importar su stock, marcado para visibilidad.
	if remaining.GreaterThan(decimal.Zero) {
		l := links[0]
		cost := l.EffectiveUnitCost()
		out = append(out, AllocationLine{
			SupplierID:   l.SupplierID,
			SupplierName: l.SupplierName,
			SKU:          l.SKU,
			Quantity:     remaining,
			UnitCost:     cost,
			LineCost:     remaining.Mul(cost),
			IsDeficit:    true,
		})
	}
	return out, nil
}
