// Package production implementa el ejecutor de producción: valida stock
// suficiente para cada componente, asigna consumo por proveedor, calcula el
// costo realizado y persiste el registro de producción como unidad atómica.
//
// Máquina de estados por envío: Validating → {Committing → Committed} | Rejected.
// Un lote de varias recetas valida TODOS los ítems antes de comprometer
// cualquiera (dos fases, todo o nada).
package production

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/application/costing"
	"github.com/jhoicas/Costeo-api/internal/application/ledger"
	"github.com/jhoicas/Costeo-api/internal/application/ports"
	"github.com/jhoicas/Costeo-api/internal/application/pricing"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// ProduceInput un ítem a producir, en lotes/recetas.
type ProduceInput struct {
	RecipeID string
	Batches  decimal.Decimal
}

// Executor ejecuta corridas de producción dentro de una transacción con
// bloqueo de filas sobre los materiales y recetas afectados, cerrando la
// carrera check-then-act entre producciones concurrentes.
type Executor struct {
	tx  ports.TxRunner
	log *logger.Logger
}

// NewExecutor construye el ejecutor.
func NewExecutor(tx ports.TxRunner, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.Nop()
	}
	return &Executor{tx: tx, log: log}
}

// Produce ejecuta una corrida de un solo ítem. Devuelve
// *domain.InsufficientStockError ante el primer faltante, sin efectos.
func (e *Executor) Produce(ctx context.Context, item ProduceInput, ts time.Time, createdBy string) (*entity.ProductionLog, error) {
	logs, err := e.ProduceBatch(ctx, []ProduceInput{item}, ts, createdBy)
	if err != nil {
		var verrs domain.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			return nil, verrs[0]
		}
		return nil, err
	}
	return logs[0], nil
}

// ProduceBatch ejecuta un lote de ítems en dos fases dentro de una sola
// transacción: la fase 1 valida todos los ítems acumulando cada faltante en
// ValidationErrors y rechaza el lote completo si hay alguno; la fase 2
// compromete todos los ítems en orden.
func (e *Executor) ProduceBatch(ctx context.Context, items []ProduceInput, ts time.Time, createdBy string) ([]*entity.ProductionLog, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range items {
		if it.RecipeID == "" || it.Batches.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	var out []*entity.ProductionLog
	err := e.tx.Run(ctx, func(r ports.RepoSet) error {
		plan, err := e.buildPlan(ctx, r, items)
		if err != nil {
			return err
		}
		if err := plan.lock(ctx, r); err != nil {
			return err
		}

		stocks := ledger.NewService(r.Events, r.Productions, r.Recipes, r.Materials)

		// Fase 1: Validating. Acumula todos los faltantes.
		if verrs := e.validate(ctx, plan, stocks, ts); len(verrs) > 0 {
			return verrs
		}

		// Fase 2: Committing.
		resolver := pricing.NewResolver(stocks)
		engine := costing.New(r.Recipes, r.Materials, r.Packagings, e.log, false)
		for _, it := range plan.items {
			plog, err := e.commit(ctx, r, plan, it, resolver, engine, ts, createdBy)
			if err != nil {
				return err
			}
			out = append(out, plog)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Int("items", len(out)).
		Time("timestamp", ts).
		Msg("lote de producción comprometido")
	return out, nil
}

// plannedItem un ítem con su receta y componentes cargados.
type plannedItem struct {
	input      ProduceInput
	recipe     *entity.Recipe
	components []entity.Component
}

// plan plan de ejecución del lote: ítems resueltos, requerimientos agregados
// por alcance y los ids a bloquear.
type plan struct {
	items       []plannedItem
	materials   map[string]*entity.RawMaterial
	reqMaterial map[string]decimal.Decimal // por id de material, en su unidad
	reqRecipe   map[string]decimal.Decimal // por id de receta anidada
	recipeNames map[string]string
	lockRecipes []string
}

// buildPlan carga recetas y componentes, agrega los requerimientos del lote
// completo por alcance y resuelve las entidades referenciadas. Una referencia
// colgante aborta la producción: aquí sí se muta stock, no hay lenidad.
func (e *Executor) buildPlan(ctx context.Context, r ports.RepoSet, items []ProduceInput) (*plan, error) {
	p := &plan{
		materials:   map[string]*entity.RawMaterial{},
		reqMaterial: map[string]decimal.Decimal{},
		reqRecipe:   map[string]decimal.Decimal{},
		recipeNames: map[string]string{},
	}
	lockRecipes := map[string]bool{}

	for _, in := range items {
		recipe, err := r.Recipes.GetByID(ctx, in.RecipeID)
		if err != nil {
			return nil, err
		}
		if recipe == nil {
			return nil, domain.ErrNotFound
		}
		comps, err := r.Recipes.ComponentsOf(ctx, in.RecipeID)
		if err != nil {
			return nil, err
		}
		p.items = append(p.items, plannedItem{input: in, recipe: recipe, components: comps})
		lockRecipes[recipe.ID] = true

		for _, c := range comps {
			switch v := c.(type) {
			case entity.RawMaterialComponent:
				m, ok := p.materials[v.MaterialID]
				if !ok {
					m, err = r.Materials.GetByID(ctx, v.MaterialID)
					if err != nil {
						return nil, err
					}
					if m == nil {
						return nil, &domain.DanglingComponentError{Kind: string(entity.KindRawMaterial), ComponentID: v.MaterialID}
					}
					p.materials[v.MaterialID] = m
				}
				qty, err := componentQty(v, m)
				if err != nil {
					return nil, err
				}
				p.reqMaterial[m.ID] = p.reqMaterial[m.ID].Add(qty.Mul(in.Batches))
			case entity.PremakeComponent:
				if err := p.addNested(ctx, r, v.RecipeID, v.Quantity, in.Batches); err != nil {
					return nil, err
				}
				lockRecipes[v.RecipeID] = true
			case entity.PreproductComponent:
				if err := p.addNested(ctx, r, v.RecipeID, v.Quantity, in.Batches); err != nil {
					return nil, err
				}
				lockRecipes[v.RecipeID] = true
			}
		}
	}

	for id := range lockRecipes {
		p.lockRecipes = append(p.lockRecipes, id)
	}
	return p, nil
}

func (p *plan) addNested(ctx context.Context, r ports.RepoSet, recipeID string, qty, batches decimal.Decimal) error {
	if _, ok := p.recipeNames[recipeID]; !ok {
		nested, err := r.Recipes.GetByID(ctx, recipeID)
		if err != nil {
			return err
		}
		if nested == nil {
			return &domain.DanglingComponentError{Kind: string(entity.KindRecipe), ComponentID: recipeID}
		}
		p.recipeNames[recipeID] = nested.Name
	}
	p.reqRecipe[recipeID] = p.reqRecipe[recipeID].Add(qty.Mul(batches))
	return nil
}

// lock bloquea en orden estable las filas de materiales y recetas afectadas
// (FOR UPDATE), evitando interbloqueos entre lotes concurrentes.
func (p *plan) lock(ctx context.Context, r ports.RepoSet) error {
	materialIDs := make([]string, 0, len(p.reqMaterial))
	for id := range p.reqMaterial {
		materialIDs = append(materialIDs, id)
	}
	sort.Strings(materialIDs)
	sort.Strings(p.lockRecipes)

	if len(materialIDs) > 0 {
		if err := r.Materials.LockByIDs(ctx, materialIDs); err != nil {
			return err
		}
	}
	if len(p.lockRecipes) > 0 {
		if err := r.Recipes.LockByIDs(ctx, p.lockRecipes); err != nil {
			return err
		}
	}
	return nil
}

// validate fase 1: comprueba el stock agregado disponible contra el
// requerimiento total del lote, por material y por receta anidada.
func (e *Executor) validate(ctx context.Context, p *plan, stocks *ledger.Service, ts time.Time) domain.ValidationErrors {
	var verrs domain.ValidationErrors

	materialIDs := sortedKeys(p.reqMaterial)
	for _, id := range materialIDs {
		m := p.materials[id]
		if m.IsUnlimited {
			continue
		}
		required := p.reqMaterial[id]
		reading, err := stocks.CurrentStock(ctx, entity.StockScope{Kind: entity.KindRawMaterial, EntityID: id}, ts)
		if err != nil {
			verrs = append(verrs, err)
			continue
		}
		if reading.Available.LessThan(required) {
			verrs = append(verrs, &domain.InsufficientStockError{
				Component: m.Name,
				Required:  required,
				Available: reading.Available,
			})
		}
	}

	recipeIDs := sortedKeys(p.reqRecipe)
	for _, id := range recipeIDs {
		required := p.reqRecipe[id]
		reading, err := stocks.CurrentStock(ctx, entity.StockScope{Kind: entity.KindRecipe, EntityID: id}, ts)
		if err != nil {
			verrs = append(verrs, err)
			continue
		}
		if reading.Available.LessThan(required) {
			verrs = append(verrs, &domain.InsufficientStockError{
				Component: p.recipeNames[id],
				Required:  required,
				Available: reading.Available,
			})
		}
	}
	return verrs
}

// commit fase 2 para un ítem: asigna consumo de materiales por proveedor,
// costea premezclas/preproductos al costo de receta (determinista, no
// promedio histórico), agrega el empaque como línea informativa y persiste el
// registro. No escribe eventos de deducción para anidados: su consumo lo
// infiere el replay desde el propio registro (sin doble conteo).
func (e *Executor) commit(ctx context.Context, r ports.RepoSet, p *plan, it plannedItem, resolver *pricing.Resolver, engine *costing.Engine, ts time.Time, createdBy string) (*entity.ProductionLog, error) {
	total := decimal.Zero
	var breakdown []entity.ProductionLine

	for _, c := range it.components {
		switch v := c.(type) {
		case entity.RawMaterialComponent:
			material := p.materials[v.MaterialID]
			qty, err := componentQty(v, material)
			if err != nil {
				return nil, err
			}
			required := qty.Mul(it.input.Batches)
			lines, err := resolver.Allocate(ctx, material, required, ts)
			if err != nil {
				return nil, err
			}
			for _, l := range lines {
				breakdown = append(breakdown, entity.ProductionLine{
					Kind:          entity.LineMaterial,
					ComponentID:   material.ID,
					ComponentName: material.Name,
					SupplierID:    l.SupplierID,
					SKU:           l.SKU,
					Quantity:      l.Quantity,
					UnitCost:      l.UnitCost,
					LineCost:      l.LineCost,
					IsDeficit:     l.IsDeficit,
				})
				total = total.Add(l.LineCost)
			}
		case entity.PremakeComponent:
			line, err := e.nestedLine(ctx, engine, entity.LinePremake, v.RecipeID, p.recipeNames[v.RecipeID], v.Quantity, it.input.Batches)
			if err != nil {
				return nil, err
			}
			breakdown = append(breakdown, line)
			total = total.Add(line.LineCost)
		case entity.PreproductComponent:
			line, err := e.nestedLine(ctx, engine, entity.LinePreproduct, v.RecipeID, p.recipeNames[v.RecipeID], v.Quantity, it.input.Batches)
			if err != nil {
				return nil, err
			}
			breakdown = append(breakdown, line)
			total = total.Add(line.LineCost)
		case entity.PackagingComponent:
			pkg, err := r.Packagings.GetByID(ctx, v.PackagingID)
			if err != nil {
				return nil, err
			}
			if pkg == nil {
				return nil, &domain.DanglingComponentError{Kind: string(entity.KindPackaging), ComponentID: v.PackagingID}
			}
			qty := v.Quantity.Mul(it.input.Batches)
			unit := pkg.PricePerUnit()
			// Informativa: el empaque se costea en la venta, no aquí.
			breakdown = append(breakdown, entity.ProductionLine{
				Kind:          entity.LinePackaging,
				ComponentID:   pkg.ID,
				ComponentName: pkg.Name,
				Quantity:      qty,
				UnitCost:      unit,
				LineCost:      qty.Mul(unit),
				Informational: true,
			})
		case entity.LossComponent:
			// La merma no aporta costo ni consumo.
		}
	}

	costPerUnit := decimal.Zero
	denom := it.input.Batches.Mul(it.recipe.Yield())
	if denom.GreaterThan(decimal.Zero) {
		costPerUnit = total.Div(denom)
	}

	plog := &entity.ProductionLog{
		ID:               uuid.New().String(),
		RecipeID:         it.recipe.ID,
		QuantityProduced: it.input.Batches,
		Timestamp:        ts,
		TotalCost:        total,
		CostPerUnit:      costPerUnit,
		Breakdown:        breakdown,
		CreatedBy:        createdBy,
	}
	if err := r.Productions.Create(ctx, plog); err != nil {
		return nil, err
	}

	// La salida de premezclas/preproductos sí genera stock propio.
	if it.recipe.StockTracked() {
		ev := &entity.StockEvent{
			ID:        uuid.New().String(),
			Scope:     entity.StockScope{Kind: entity.KindRecipe, EntityID: it.recipe.ID},
			Action:    entity.ActionAdd,
			Quantity:  it.input.Batches.Mul(it.recipe.Yield()),
			Timestamp: ts,
			Note:      "producción " + plog.ID,
			CreatedBy: createdBy,
		}
		if err := r.Events.Append(ctx, ev); err != nil {
			return nil, err
		}
	}
	return plog, nil
}

// nestedLine línea de consumo de una receta anidada al costo de receta.
func (e *Executor) nestedLine(ctx context.Context, engine *costing.Engine, kind entity.LineKind, recipeID, name string, qty, batches decimal.Decimal) (entity.ProductionLine, error) {
	unitCost, err := engine.UnitCost(ctx, recipeID)
	if err != nil {
		return entity.ProductionLine{}, err
	}
	totalQty := qty.Mul(batches)
	return entity.ProductionLine{
		Kind:          kind,
		ComponentID:   recipeID,
		ComponentName: name,
		Quantity:      totalQty,
		UnitCost:      unitCost,
		LineCost:      totalQty.Mul(unitCost),
	}, nil
}

// componentQty cantidad del componente convertida a la unidad del material.
func componentQty(c entity.RawMaterialComponent, m *entity.RawMaterial) (decimal.Decimal, error) {
	if c.Unit == "" || c.Unit == m.Unit {
		return c.Quantity, nil
	}
	return units.Convert(c.Quantity, c.Unit, m.Unit)
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asValidationErrors extrae ValidationErrors de err (incluye el caso directo).
func asValidationErrors(err error, target *domain.ValidationErrors) bool {
	if v, ok := err.(domain.ValidationErrors); ok {
		*target = v
		return true
	}
	return false
}
