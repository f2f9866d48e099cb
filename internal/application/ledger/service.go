// Package ledger implementa el Stock Ledger: derivación del stock vigente de
// una entidad por replay del log de eventos (set/add) más el consumo
// implícito de los registros de producción. Lectura pura: no cachea totales.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// EventSource eventos del ledger para un alcance (orden ascendente).
type EventSource interface {
	ListByScope(ctx context.Context, scope entity.StockScope, until time.Time) ([]*entity.StockEvent, error)
}

// ProductionSource registros de producción hasta un instante (orden ascendente).
type ProductionSource interface {
	ListUntil(ctx context.Context, until time.Time) ([]*entity.ProductionLog, error)
}

// ComponentSource componentes por lote de una receta.
type ComponentSource interface {
	ComponentsOf(ctx context.Context, recipeID string) ([]entity.Component, error)
}

// MaterialSource materias primas con sus vínculos de proveedor.
type MaterialSource interface {
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
}

// Reading resultado de una consulta de stock. Available está recortado a >= 0
// para presentación; Signed conserva el valor con signo para cálculos de
// varianza. Unlimited marca materiales de stock infinito (sin replay).
type Reading struct {
	Available decimal.Decimal
	Signed    decimal.Decimal
	Unlimited bool
}

// Service deriva el stock vigente replayando el historial de eventos.
type Service struct {
	events      EventSource
	productions ProductionSource
	components  ComponentSource
	materials   MaterialSource
}

// NewService construye el servicio. Los repositorios de dominio satisfacen
// los puertos; puede construirse sobre el pool o sobre repos atados a una tx.
func NewService(events EventSource, productions ProductionSource, components ComponentSource, materials MaterialSource) *Service {
	return &Service{events: events, productions: productions, components: components, materials: materials}
}

// CurrentStock deriva el stock del alcance al instante asOf:
//  1. base = último set con timestamp <= asOf (0 si no hay);
//  2. más los add en (set, asOf];
//  3. menos el consumo implícito de producciones en la misma ventana.
//
// Un alcance acotado a proveedor/SKU solo considera eventos y líneas de
// consumo con esa etiqueta. Materiales ilimitados devuelven Unlimited sin
// tocar el ledger.
func (s *Service) CurrentStock(ctx context.Context, scope entity.StockScope, asOf time.Time) (Reading, error) {
	if !entity.ValidEntityKind(scope.Kind) || scope.EntityID == "" {
		return Reading{}, domain.ErrInvalidInput
	}
	if scope.Narrowed() && scope.Kind != entity.KindRawMaterial {
		return Reading{}, &domain.InvalidScopeError{EntityID: scope.EntityID, SupplierID: scope.SupplierID, SKU: scope.SKU}
	}

	var material *entity.RawMaterial
	if scope.Kind == entity.KindRawMaterial {
		m, err := s.materials.GetByID(ctx, scope.EntityID)
		if err != nil {
			return Reading{}, err
		}
		if m == nil {
			return Reading{}, domain.ErrNotFound
		}
		if m.IsUnlimited {
			return Reading{Unlimited: true}, nil
		}
		if scope.Narrowed() && !m.HasLink(scope.SupplierID, scope.SKU) {
			return Reading{}, &domain.InvalidScopeError{EntityID: scope.EntityID, SupplierID: scope.SupplierID, SKU: scope.SKU}
		}
		material = m
	}

	base, setTs, err := s.replayEvents(ctx, scope, asOf)
	if err != nil {
		return Reading{}, err
	}

	consumed, err := s.consumedBetween(ctx, scope, material, setTs, asOf)
	if err != nil {
		return Reading{}, err
	}

	signed := base.Sub(consumed)
	available := signed
	if available.IsNegative() {
		available = decimal.Zero
	}
	return Reading{Available: available, Signed: signed}, nil
}

// replayEvents devuelve base (último set + adds posteriores) y el timestamp
// del set vigente (cero si el alcance nunca tuvo set: base parte de 0, que es
// un estado válido, no un error).
//
// En un alcance agregado, un set etiquetado con proveedor/SKU es el conteo de
// ESE tramo, no de toda la entidad: reemplaza la contribución vigente de su
// etiqueta en lugar de resetear la base. Así el agregado coincide con la suma
// de las lecturas acotadas que consume el resolutor de precios. Solo un set
// sin etiqueta (conteo de la entidad completa) resetea la historia entera.
func (s *Service) replayEvents(ctx context.Context, scope entity.StockScope, asOf time.Time) (decimal.Decimal, time.Time, error) {
	events, err := s.events.ListByScope(ctx, scope, asOf)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}

	base := decimal.Zero
	var setTs time.Time
	tagged := map[string]decimal.Decimal{} // contribución vigente por etiqueta
	for _, ev := range events {
		if !scope.Matches(ev) || ev.Timestamp.After(asOf) {
			continue
		}
		tag := eventTag(ev)
		switch ev.Action {
		case entity.ActionSet:
			if scope.Narrowed() || tag == "" {
				// Conteo del alcance completo: descarta base y adds previos.
				base = ev.Quantity
				setTs = ev.Timestamp
				tagged = map[string]decimal.Decimal{}
			} else {
				base = base.Add(ev.Quantity.Sub(tagged[tag]))
				tagged[tag] = ev.Quantity
			}
		case entity.ActionAdd:
			base = base.Add(ev.Quantity)
			if !scope.Narrowed() && tag != "" {
				tagged[tag] = tagged[tag].Add(ev.Quantity)
			}
		}
	}
	return base, setTs, nil
}

// eventTag clave proveedor|SKU del evento; vacía si el evento no está acotado.
func eventTag(e *entity.StockEvent) string {
	if e.Scope.SupplierID == "" && e.Scope.SKU == "" {
		return ""
	}
	return e.Scope.SupplierID + "|" + e.Scope.SKU
}

// consumedBetween suma el consumo implicado por producciones con timestamp en
// (after, until]. Para alcances acotados usa las líneas congeladas del
// desglose (atribución por proveedor); para el agregado usa la lista de
// componentes de la receta producida, como define el replay.
func (s *Service) consumedBetween(ctx context.Context, scope entity.StockScope, material *entity.RawMaterial, after, until time.Time) (decimal.Decimal, error) {
	logs, err := s.productions.ListUntil(ctx, until)
	if err != nil {
		return decimal.Zero, err
	}

	consumed := decimal.Zero
	compCache := map[string][]entity.Component{}
	for _, pl := range logs {
		if !pl.Timestamp.After(after) || pl.Timestamp.After(until) {
			continue
		}
		if scope.Narrowed() {
			consumed = consumed.Add(narrowedConsumption(pl, scope))
			continue
		}
		comps, ok := compCache[pl.RecipeID]
		if !ok {
			comps, err = s.components.ComponentsOf(ctx, pl.RecipeID)
			if err != nil {
				return decimal.Zero, err
			}
			compCache[pl.RecipeID] = comps
		}
		qty, err := aggregateConsumption(comps, scope, material, pl.QuantityProduced)
		if err != nil {
			return decimal.Zero, err
		}
		consumed = consumed.Add(qty)
	}
	return consumed, nil
}

// narrowedConsumption consumo atribuido al proveedor/SKU del alcance según el
// desglose congelado de la producción.
func narrowedConsumption(pl *entity.ProductionLog, scope entity.StockScope) decimal.Decimal {
	total := decimal.Zero
	for _, line := range pl.Breakdown {
		if line.Kind != entity.LineMaterial || line.ComponentID != scope.EntityID {
			continue
		}
		if scope.SupplierID != "" && line.SupplierID != scope.SupplierID {
			continue
		}
		if scope.SKU != "" && line.SKU != scope.SKU {
			continue
		}
		total = total.Add(line.Quantity)
	}
	return total
}

// aggregateConsumption consumo agregado: cantidad del componente por lote
// multiplicada por los lotes producidos, convertida a la unidad del material
// cuando la receta la expresa en otra unidad compatible.
func aggregateConsumption(comps []entity.Component, scope entity.StockScope, material *entity.RawMaterial, batches decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range comps {
		switch v := c.(type) {
		case entity.RawMaterialComponent:
			if scope.Kind != entity.KindRawMaterial || v.MaterialID != scope.EntityID {
				continue
			}
			qty := v.Quantity
			if material != nil && v.Unit != "" && v.Unit != material.Unit {
				converted, err := units.Convert(qty, v.Unit, material.Unit)
				if err != nil {
					return decimal.Zero, err
				}
				qty = converted
			}
			total = total.Add(qty.Mul(batches))
		case entity.PremakeComponent:
			if scope.Kind == entity.KindRecipe && v.RecipeID == scope.EntityID {
				total = total.Add(v.Quantity.Mul(batches))
			}
		case entity.PreproductComponent:
			if scope.Kind == entity.KindRecipe && v.RecipeID == scope.EntityID {
				total = total.Add(v.Quantity.Mul(batches))
			}
		}
	}
	return total, nil
}
