// Package costing implementa el motor de resolución de costos: el costo de
// una unidad de cualquier receta se obtiene resolviendo recursivamente su
// árbol de componentes hasta hojas monetarias (materias primas con precio de
// proveedor descontado, empaques, premezclas anidadas).
package costing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// RecipeSource recetas y su árbol de componentes.
type RecipeSource interface {
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	ComponentsOf(ctx context.Context, recipeID string) ([]entity.Component, error)
}

// MaterialSource materias primas con vínculos de proveedor.
type MaterialSource interface {
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
}

// PackagingSource empaques.
type PackagingSource interface {
	GetByID(ctx context.Context, id string) (*entity.Packaging, error)
}

// Engine resuelve costos unitarios sobre el grafo de componentes. El grafo
// debe ser acíclico; un ciclo produce CycleError, nunca recursión infinita.
//
// En modo estricto un componente colgante (referencia a entidad inexistente)
// falla con DanglingComponentError; en modo por defecto aporta costo cero y
// deja una advertencia de integridad en el log, como el sistema legado.
type Engine struct {
	recipes    RecipeSource
	materials  MaterialSource
	packagings PackagingSource
	log        *logger.Logger
	strict     bool
}

// New construye el motor. strict activa el fallo explícito ante componentes
// colgantes.
func New(recipes RecipeSource, materials MaterialSource, packagings PackagingSource, log *logger.Logger, strict bool) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{recipes: recipes, materials: materials, packagings: packagings, log: log, strict: strict}
}

// UnitCost devuelve el costo de producir una unidad de la receta.
func (e *Engine) UnitCost(ctx context.Context, recipeID string) (decimal.Decimal, error) {
	return e.unitCost(ctx, recipeID, map[string]bool{}, nil)
}

// unitCost resolución recursiva. visited marca los nodos del camino actual
// (se desmarca al volver, para permitir diamantes); path acumula el camino
// para reportar el ciclo.
func (e *Engine) unitCost(ctx context.Context, recipeID string, visited map[string]bool, path []string) (decimal.Decimal, error) {
	if visited[recipeID] {
		return decimal.Zero, &domain.CycleError{Path: append(append([]string{}, path...), recipeID)}
	}
	recipe, err := e.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return decimal.Zero, err
	}
	if recipe == nil {
		return e.dangling(string(entity.KindRecipe), recipeID)
	}

	// Registros migrados del sistema anterior conservan su costo congelado.
	if recipe.LegacyCost != nil {
		return *recipe.LegacyCost, nil
	}

	visited[recipeID] = true
	defer delete(visited, recipeID)
	path = append(path, recipeID)

	comps, err := e.recipes.ComponentsOf(ctx, recipeID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, c := range comps {
		switch v := c.(type) {
		case entity.RawMaterialComponent:
			cost, err := e.materialCost(ctx, v)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(cost)
		case entity.PackagingComponent:
			cost, err := e.packagingCost(ctx, v)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(cost)
		case entity.PremakeComponent:
			nested, err := e.unitCost(ctx, v.RecipeID, visited, path)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(v.Quantity.Mul(nested))
		case entity.PreproductComponent:
			nested, err := e.unitCost(ctx, v.RecipeID, visited, path)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(v.Quantity.Mul(nested))
		case entity.LossComponent:
			// La merma no aporta costo: ya redujo el rendimiento neto.
		default:
			return decimal.Zero, domain.ErrInvalidInput
		}
	}

	// Normaliza por rendimiento; rendimiento <= 0 devuelve 0 (resultado
	// definido, no fatal).
	yield := recipe.Yield()
	if yield.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	return total.Div(yield), nil
}

// materialCost cantidad * costo efectivo del vínculo primario (precio
// representativo para valoración; la asignación real por proveedor ocurre en
// la producción).
func (e *Engine) materialCost(ctx context.Context, c entity.RawMaterialComponent) (decimal.Decimal, error) {
	m, err := e.materials.GetByID(ctx, c.MaterialID)
	if err != nil {
		return decimal.Zero, err
	}
	if m == nil {
		return e.dangling(string(entity.KindRawMaterial), c.MaterialID)
	}
	link := m.PrimaryLink()
	if link == nil {
		return decimal.Zero, domain.ErrNoSupplierLinks
	}
	qty := c.Quantity
	if c.Unit != "" && c.Unit != m.Unit {
		qty, err = units.Convert(qty, c.Unit, m.Unit)
		if err != nil {
			return decimal.Zero, err
		}
	}
	return qty.Mul(link.EffectiveUnitCost()), nil
}

// packagingCost cantidad * precio por unidad de empaque.
func (e *Engine) packagingCost(ctx context.Context, c entity.PackagingComponent) (decimal.Decimal, error) {
	p, err := e.packagings.GetByID(ctx, c.PackagingID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return e.dangling(string(entity.KindPackaging), c.PackagingID)
	}
	return c.Quantity.Mul(p.PricePerUnit()), nil
}

// dangling aplica la política ante referencias colgantes.
func (e *Engine) dangling(kind, id string) (decimal.Decimal, error) {
	if e.strict {
		return decimal.Zero, &domain.DanglingComponentError{Kind: kind, ComponentID: id}
	}
	e.log.Warn().
		Str("kind", kind).
		Str("component_id", id).
		Msg("componente colgante: la entidad referenciada no existe, aporta costo cero")
	return decimal.Zero, nil
}
