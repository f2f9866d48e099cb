package production_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Costeo-api/internal/application/ledger"
	"github.com/jhoicas/Costeo-api/internal/application/ports"
	"github.com/jhoicas/Costeo-api/internal/application/production"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria compartido por los fakes de repositorio
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	materials  map[string]*entity.RawMaterial
	recipes    map[string]*entity.Recipe
	components map[string][]entity.Component
	packagings map[string]*entity.Packaging
	events     []*entity.StockEvent
	logs       []*entity.ProductionLog

	lockedMaterials [][]string
	lockedRecipes   [][]string
}

type materialsRepo struct{ s *store }

func (r materialsRepo) Create(context.Context, *entity.RawMaterial) error { return nil }
func (r materialsRepo) GetByID(_ context.Context, id string) (*entity.RawMaterial, error) {
	return r.s.materials[id], nil
}
func (r materialsRepo) List(context.Context, bool, int, int) ([]*entity.RawMaterial, error) {
	return nil, nil
}
func (r materialsRepo) Update(context.Context, *entity.RawMaterial) error { return nil }
func (r materialsRepo) ReplaceLinks(context.Context, string, []entity.SupplierLink) error {
	return nil
}
func (r materialsRepo) Archive(context.Context, string) error           { return nil }
func (r materialsRepo) Delete(context.Context, string) error            { return nil }
func (r materialsRepo) HasHistory(context.Context, string) (bool, error) { return false, nil }
func (r materialsRepo) LockByIDs(_ context.Context, ids []string) error {
	r.s.lockedMaterials = append(r.s.lockedMaterials, ids)
	return nil
}

type recipesRepo struct{ s *store }

func (r recipesRepo) Create(context.Context, *entity.Recipe) error { return nil }
func (r recipesRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	return r.s.recipes[id], nil
}
func (r recipesRepo) List(context.Context, bool, int, int) ([]*entity.Recipe, error) {
	return nil, nil
}
func (r recipesRepo) Update(context.Context, *entity.Recipe) error     { return nil }
func (r recipesRepo) Archive(context.Context, string) error            { return nil }
func (r recipesRepo) Delete(context.Context, string) error             { return nil }
func (r recipesRepo) HasHistory(context.Context, string) (bool, error) { return false, nil }
func (r recipesRepo) ComponentsOf(_ context.Context, recipeID string) ([]entity.Component, error) {
	return r.s.components[recipeID], nil
}
func (r recipesRepo) ReplaceComponents(context.Context, string, []entity.Component) error {
	return nil
}
func (r recipesRepo) LockByIDs(_ context.Context, ids []string) error {
	r.s.lockedRecipes = append(r.s.lockedRecipes, ids)
	return nil
}

type packagingsRepo struct{ s *store }

func (r packagingsRepo) Create(context.Context, *entity.Packaging) error { return nil }
func (r packagingsRepo) GetByID(_ context.Context, id string) (*entity.Packaging, error) {
	return r.s.packagings[id], nil
}
func (r packagingsRepo) List(context.Context, bool, int, int) ([]*entity.Packaging, error) {
	return nil, nil
}
func (r packagingsRepo) Update(context.Context, *entity.Packaging) error   { return nil }
func (r packagingsRepo) Archive(context.Context, string) error             { return nil }
func (r packagingsRepo) Delete(context.Context, string) error              { return nil }
func (r packagingsRepo) HasHistory(context.Context, string) (bool, error)  { return false, nil }

type eventsRepo struct{ s *store }

func (r eventsRepo) Append(_ context.Context, ev *entity.StockEvent) error {
	r.s.events = append(r.s.events, ev)
	return nil
}
func (r eventsRepo) ListByScope(_ context.Context, scope entity.StockScope, until time.Time) ([]*entity.StockEvent, error) {
	var out []*entity.StockEvent
	for _, ev := range r.s.events {
		if scope.Matches(ev) && !ev.Timestamp.After(until) {
			out = append(out, ev)
		}
	}
	return out, nil
}
func (r eventsRepo) HasEvents(context.Context, entity.EntityKind, string) (bool, error) {
	return len(r.s.events) > 0, nil
}

type productionsRepo struct{ s *store }

func (r productionsRepo) Create(_ context.Context, plog *entity.ProductionLog) error {
	r.s.logs = append(r.s.logs, plog)
	return nil
}
func (r productionsRepo) GetByID(context.Context, string) (*entity.ProductionLog, error) {
	return nil, nil
}
func (r productionsRepo) ListBetween(context.Context, *time.Time, *time.Time, int, int) ([]*entity.ProductionLog, error) {
	return nil, nil
}
func (r productionsRepo) ListUntil(_ context.Context, until time.Time) ([]*entity.ProductionLog, error) {
	var out []*entity.ProductionLog
	for _, pl := range r.s.logs {
		if !pl.Timestamp.After(until) {
			out = append(out, pl)
		}
	}
	return out, nil
}
func (r productionsRepo) HasForRecipe(context.Context, string) (bool, error) { return false, nil }

type auditsRepo struct{}

func (auditsRepo) Create(context.Context, *entity.StockAudit) error { return nil }
func (auditsRepo) ListBetween(context.Context, *time.Time, *time.Time, int, int) ([]*entity.StockAudit, error) {
	return nil, nil
}
func (auditsRepo) ListByEntity(context.Context, entity.EntityKind, string, int, int) ([]*entity.StockAudit, error) {
	return nil, nil
}

type txRunner struct{ s *store }

func (t txRunner) Run(ctx context.Context, fn func(r ports.RepoSet) error) error {
	return fn(t.repos())
}

func (t txRunner) repos() ports.RepoSet {
	return ports.RepoSet{
		Materials:   materialsRepo{t.s},
		Recipes:     recipesRepo{t.s},
		Packagings:  packagingsRepo{t.s},
		Events:      eventsRepo{t.s},
		Productions: productionsRepo{t.s},
		Audits:      auditsRepo{},
	}
}

func newExecutor(s *store) *production.Executor {
	return production.NewExecutor(txRunner{s}, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

var t0 = time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

// harina con primario Alfa a 1000 y 10% de descuento (efectivo 900) y
// secundario Beta a 1200.
func harina() *entity.RawMaterial {
	return &entity.RawMaterial{
		ID:   "harina",
		Name: "Harina",
		Unit: units.Kilogram,
		Links: []entity.SupplierLink{
			{SupplierID: "p-a", SupplierName: "Alfa", SKU: "H-01", CostPerUnit: dec(1000), DiscountPct: dec(10), IsPrimary: true},
			{SupplierID: "p-b", SupplierName: "Beta", SKU: "H-02", CostPerUnit: dec(1200)},
		},
	}
}

func addEvent(scope entity.StockScope, qty float64, ts time.Time) *entity.StockEvent {
	return &entity.StockEvent{Scope: scope, Action: entity.ActionAdd, Quantity: dec(qty), Timestamp: ts}
}

func supplierScope(materialID, supplierID, sku string) entity.StockScope {
	return entity.StockScope{Kind: entity.KindRawMaterial, EntityID: materialID, SupplierID: supplierID, SKU: sku}
}

// baseStore torta vendible (rinde 10) que consume 2 kg de harina por lote,
// con empaque y merma.
func baseStore() *store {
	return &store{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		recipes: map[string]*entity.Recipe{
			"torta": {ID: "torta", Name: "Torta", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(10)},
		},
		components: map[string][]entity.Component{
			"torta": {
				entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(2), Unit: units.Kilogram},
				entity.PackagingComponent{PackagingID: "caja", Quantity: dec(10)},
				entity.LossComponent{Quantity: dec(1)},
			},
		},
		packagings: map[string]*entity.Packaging{
			"caja": {ID: "caja", Name: "Caja", QtyPerPackage: dec(100), PricePerPackage: dec(5000)},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Corrida simple
// ──────────────────────────────────────────────────────────────────────────────

// Una corrida exitosa persiste el registro con el desglose congelado: consumo
// por proveedor (primario primero), empaque informativo fuera del total.
func TestProduce_CorridaConDesglose(t *testing.T) {
	s := baseStore()
	s.events = []*entity.StockEvent{
		addEvent(supplierScope("harina", "p-a", "H-01"), 4, at(0)),
		addEvent(supplierScope("harina", "p-b", "H-02"), 8, at(0)),
	}

	plog, err := newExecutor(s).Produce(context.Background(), production.ProduceInput{RecipeID: "torta", Batches: dec(3)}, at(60), "ana")
	require.NoError(t, err)

	// 4 kg de Alfa a 900 + 2 kg de Beta a 1200; el empaque no suma al total.
	assert.True(t, plog.TotalCost.Equal(dec(6000)), "3600 + 2400, obtuve %s", plog.TotalCost)
	assert.True(t, plog.CostPerUnit.Equal(dec(200)), "6000 / (3 lotes * 10), obtuve %s", plog.CostPerUnit)
	assert.Equal(t, "ana", plog.CreatedBy)

	require.Len(t, plog.Breakdown, 3)

	alfa := plog.Breakdown[0]
	assert.Equal(t, entity.LineMaterial, alfa.Kind)
	assert.Equal(t, "p-a", alfa.SupplierID)
	assert.True(t, alfa.Quantity.Equal(dec(4)))
	assert.True(t, alfa.UnitCost.Equal(dec(900)), "costo efectivo con descuento")
	assert.False(t, alfa.IsDeficit)

	beta := plog.Breakdown[1]
	assert.Equal(t, "p-b", beta.SupplierID)
	assert.True(t, beta.Quantity.Equal(dec(2)))
	assert.True(t, beta.LineCost.Equal(dec(2400)))

	caja := plog.Breakdown[2]
	assert.Equal(t, entity.LinePackaging, caja.Kind)
	assert.True(t, caja.Quantity.Equal(dec(30)))
	assert.True(t, caja.UnitCost.Equal(dec(50)), "5000 por paquete / 100 unidades")
	assert.True(t, caja.Informational, "el empaque se costea en la venta, no en producción")

	require.Len(t, s.logs, 1, "el registro queda persistido")
	assert.Len(t, s.events, 2, "un vendible no genera stock propio ni eventos de deducción")
	require.NotEmpty(t, s.lockedMaterials, "la corrida bloquea los materiales afectados")
	assert.Equal(t, []string{"harina"}, s.lockedMaterials[0])
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación (fase 1)
// ──────────────────────────────────────────────────────────────────────────────

// El faltante se detecta contra el stock agregado y rechaza la corrida sin
// efectos: ni registro ni eventos.
func TestProduce_StockInsuficiente(t *testing.T) {
	s := baseStore()
	s.events = []*entity.StockEvent{addEvent(supplierScope("harina", "p-a", "H-01"), 4, at(0))}

	_, err := newExecutor(s).Produce(context.Background(), production.ProduceInput{RecipeID: "torta", Batches: dec(3)}, at(60), "ana")

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Harina", stockErr.Component)
	assert.True(t, stockErr.Required.Equal(dec(6)), "3 lotes * 2 kg")
	assert.True(t, stockErr.Available.Equal(dec(4)))

	assert.Empty(t, s.logs, "una corrida rechazada no deja registro")
	assert.Len(t, s.events, 1, "ni eventos nuevos")
}

// Un lote valida TODOS los ítems antes de comprometer cualquiera: si uno
// falla, el ítem válido tampoco se compromete.
func TestProduceBatch_TodoONada(t *testing.T) {
	s := baseStore()
	azucar := &entity.RawMaterial{
		ID: "azucar", Name: "Azúcar", Unit: units.Kilogram,
		Links: []entity.SupplierLink{{SupplierID: "p-c", SupplierName: "Gamma", SKU: "A-01", CostPerUnit: dec(800), IsPrimary: true}},
	}
	s.materials["azucar"] = azucar
	s.recipes["pan"] = &entity.Recipe{ID: "pan", Name: "Pan", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(20)}
	s.components["pan"] = []entity.Component{
		entity.RawMaterialComponent{MaterialID: "azucar", Quantity: dec(5), Unit: units.Kilogram},
	}
	s.events = []*entity.StockEvent{
		addEvent(supplierScope("harina", "p-a", "H-01"), 10, at(0)),
		addEvent(supplierScope("azucar", "p-c", "A-01"), 4, at(0)),
	}

	_, err := newExecutor(s).ProduceBatch(context.Background(), []production.ProduceInput{
		{RecipeID: "torta", Batches: dec(1)}, // 2 kg de harina: alcanza
		{RecipeID: "pan", Batches: dec(1)},   // 5 kg de azúcar: faltan
	}, at(60), "ana")

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, verrs[0], &stockErr)
	assert.Equal(t, "Azúcar", stockErr.Component)

	assert.Empty(t, s.logs, "el ítem válido tampoco se compromete")
}

// El requerimiento se agrega por material a través de todo el lote: dos ítems
// que individualmente caben pueden no caber juntos.
func TestProduceBatch_RequerimientoAgregado(t *testing.T) {
	s := baseStore()
	s.events = []*entity.StockEvent{addEvent(supplierScope("harina", "p-a", "H-01"), 10, at(0))}

	_, err := newExecutor(s).ProduceBatch(context.Background(), []production.ProduceInput{
		{RecipeID: "torta", Batches: dec(3)}, // 6 kg
		{RecipeID: "torta", Batches: dec(3)}, // 6 kg más: 12 > 10
	}, at(60), "ana")

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, verrs[0], &stockErr)
	assert.True(t, stockErr.Required.Equal(dec(12)), "el faltante reporta el total del lote")
}

// ──────────────────────────────────────────────────────────────────────────────
// Recetas anidadas
// ──────────────────────────────────────────────────────────────────────────────

// Producir una premezcla genera stock propio de la receta.
func TestProduce_PremezclaGeneraStock(t *testing.T) {
	s := baseStore()
	s.recipes["relleno"] = &entity.Recipe{ID: "relleno", Name: "Relleno", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(500)}
	s.components["relleno"] = []entity.Component{
		entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(1), Unit: units.Kilogram},
	}
	s.events = []*entity.StockEvent{addEvent(supplierScope("harina", "p-a", "H-01"), 10, at(0))}

	plog, err := newExecutor(s).Produce(context.Background(), production.ProduceInput{RecipeID: "relleno", Batches: dec(2)}, at(60), "ana")
	require.NoError(t, err)

	assert.True(t, plog.TotalCost.Equal(dec(1800)), "2 kg a 900")
	assert.True(t, plog.CostPerUnit.Equal(dec(1.8)), "1800 / (2 lotes * 500 g)")

	require.Len(t, s.events, 2, "la salida de la premezcla entra al ledger")
	ev := s.events[1]
	assert.Equal(t, entity.KindRecipe, ev.Scope.Kind)
	assert.Equal(t, "relleno", ev.Scope.EntityID)
	assert.Equal(t, entity.ActionAdd, ev.Action)
	assert.True(t, ev.Quantity.Equal(dec(1000)), "2 lotes * 500")
	assert.Equal(t, "producción "+plog.ID, ev.Note)
}

// El consumo de una anidada se costea al costo de receta y NO escribe evento
// de deducción: el replay lo infiere del propio registro.
func TestProduce_ConsumoDeAnidada(t *testing.T) {
	s := baseStore()
	s.recipes["relleno"] = &entity.Recipe{ID: "relleno", Name: "Relleno", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(500)}
	s.components["relleno"] = []entity.Component{
		entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(1), Unit: units.Kilogram},
	}
	s.recipes["alfajor"] = &entity.Recipe{ID: "alfajor", Name: "Alfajor", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(12)}
	s.components["alfajor"] = []entity.Component{
		entity.PremakeComponent{RecipeID: "relleno", Quantity: dec(100)},
	}
	s.events = []*entity.StockEvent{
		addEvent(entity.StockScope{Kind: entity.KindRecipe, EntityID: "relleno"}, 500, at(0)),
	}

	plog, err := newExecutor(s).Produce(context.Background(), production.ProduceInput{RecipeID: "alfajor", Batches: dec(2)}, at(60), "ana")
	require.NoError(t, err)

	require.Len(t, plog.Breakdown, 1)
	line := plog.Breakdown[0]
	assert.Equal(t, entity.LinePremake, line.Kind)
	assert.True(t, line.Quantity.Equal(dec(200)))
	assert.True(t, line.UnitCost.Equal(dec(1.8)), "costo de receta 900/500, no promedio histórico")
	assert.True(t, line.LineCost.Equal(dec(360)))

	assert.Len(t, s.events, 1, "sin evento de deducción para la anidada")

	// El replay descuenta el consumo desde el registro recién creado.
	tx := txRunner{s}
	repos := tx.repos()
	stocks := ledger.NewService(repos.Events, repos.Productions, repos.Recipes, repos.Materials)
	reading, err := stocks.CurrentStock(context.Background(), entity.StockScope{Kind: entity.KindRecipe, EntityID: "relleno"}, at(90))
	require.NoError(t, err)
	assert.True(t, reading.Available.Equal(dec(300)), "500 - 200 = 300, obtuve %s", reading.Available)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bordes
// ──────────────────────────────────────────────────────────────────────────────

// Aquí sí se muta stock: una referencia colgante aborta, sin lenidad.
func TestProduce_ComponenteColgante(t *testing.T) {
	s := baseStore()
	s.components["torta"] = []entity.Component{
		entity.RawMaterialComponent{MaterialID: "fantasma", Quantity: dec(1)},
	}

	_, err := newExecutor(s).Produce(context.Background(), production.ProduceInput{RecipeID: "torta", Batches: dec(1)}, at(60), "ana")
	var dangling *domain.DanglingComponentError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, "fantasma", dangling.ComponentID)
}

// Cuando la validación agregada pasa pero el desglose por proveedor no cubre,
// el remanente queda como déficit del primario.
func TestProduce_DeficitEnElDesglose(t *testing.T) {
	s := baseStore()
	// Evento sin etiqueta de proveedor: cuenta en el agregado pero no en los
	// alcances acotados.
	s.events = []*entity.StockEvent{
		addEvent(entity.StockScope{Kind: entity.KindRawMaterial, EntityID: "harina"}, 10, at(0)),
	}

	plog, err := newExecutor(s).Produce(context.Background(), production.ProduceInput{RecipeID: "torta", Batches: dec(3)}, at(60), "ana")
	require.NoError(t, err)

	require.Len(t, plog.Breakdown, 2) // déficit + empaque
	deficit := plog.Breakdown[0]
	assert.True(t, deficit.IsDeficit)
	assert.Equal(t, "p-a", deficit.SupplierID, "el déficit se atribuye al primario")
	assert.True(t, deficit.Quantity.Equal(dec(6)))
	assert.True(t, deficit.LineCost.Equal(dec(5400)))
}

func TestProduce_EntradaInvalida(t *testing.T) {
	s := baseStore()
	exec := newExecutor(s)

	_, err := exec.ProduceBatch(context.Background(), nil, at(0), "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "lote vacío")

	_, err = exec.Produce(context.Background(), production.ProduceInput{RecipeID: "torta", Batches: decimal.Zero}, at(0), "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "lotes no positivos")

	_, err = exec.Produce(context.Background(), production.ProduceInput{RecipeID: "nope", Batches: dec(1)}, at(0), "ana")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
