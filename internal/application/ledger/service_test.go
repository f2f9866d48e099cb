package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Costeo-api/internal/application/ledger"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de las fuentes del ledger
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	events     []*entity.StockEvent
	logs       []*entity.ProductionLog
	components map[string][]entity.Component
	materials  map[string]*entity.RawMaterial
}

func (f *fakeLedger) ListByScope(_ context.Context, scope entity.StockScope, until time.Time) ([]*entity.StockEvent, error) {
	var out []*entity.StockEvent
	for _, ev := range f.events {
		if scope.Matches(ev) && !ev.Timestamp.After(until) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListUntil(_ context.Context, until time.Time) ([]*entity.ProductionLog, error) {
	var out []*entity.ProductionLog
	for _, pl := range f.logs {
		if !pl.Timestamp.After(until) {
			out = append(out, pl)
		}
	}
	return out, nil
}

func (f *fakeLedger) ComponentsOf(_ context.Context, recipeID string) ([]entity.Component, error) {
	return f.components[recipeID], nil
}

func (f *fakeLedger) GetByID(_ context.Context, id string) (*entity.RawMaterial, error) {
	return f.materials[id], nil
}

func newService(f *fakeLedger) *ledger.Service {
	return ledger.NewService(f, f, f, f)
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

var t0 = time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func matScope(id string) entity.StockScope {
	return entity.StockScope{Kind: entity.KindRawMaterial, EntityID: id}
}

func event(scope entity.StockScope, action entity.EventAction, qty float64, ts time.Time) *entity.StockEvent {
	return &entity.StockEvent{Scope: scope, Action: action, Quantity: dec(qty), Timestamp: ts}
}

func harina() *entity.RawMaterial {
	return &entity.RawMaterial{
		ID:   "harina",
		Unit: units.Kilogram,
		Links: []entity.SupplierLink{
			{SupplierID: "p-a", SupplierName: "Alfa", SKU: "H-01", IsPrimary: true},
			{SupplierID: "p-b", SupplierName: "Beta", SKU: "H-02"},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Replay de eventos
// ──────────────────────────────────────────────────────────────────────────────

// Un set resetea la historia: descarta la base y los adds previos.
func TestCurrentStock_SetReseteaHistoria(t *testing.T) {
	scope := matScope("harina")
	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scope, entity.ActionAdd, 5, at(0)),
			event(scope, entity.ActionSet, 10, at(10)),
			event(scope, entity.ActionAdd, 3, at(20)),
		},
	}

	reading, err := newService(f).CurrentStock(context.Background(), scope, at(60))
	require.NoError(t, err)
	assert.True(t, reading.Available.Equal(dec(13)), "10 (set) + 3 (add), obtuve %s", reading.Available)
}

// Los adds pueden ser negativos (correcciones); Available se recorta a 0 pero
// Signed conserva el valor real para varianzas.
func TestCurrentStock_ClampYSigned(t *testing.T) {
	scope := matScope("harina")
	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scope, entity.ActionSet, 4, at(0)),
			event(scope, entity.ActionAdd, -7, at(10)),
		},
	}

	reading, err := newService(f).CurrentStock(context.Background(), scope, at(60))
	require.NoError(t, err)
	assert.True(t, reading.Available.IsZero(), "Available nunca es negativo")
	assert.True(t, reading.Signed.Equal(dec(-3)), "Signed conserva el signo, obtuve %s", reading.Signed)
}

// Eventos posteriores a asOf no cuentan: la consulta es reproducible hacia
// atrás en el tiempo.
func TestCurrentStock_AsOfIgnoraEventosFuturos(t *testing.T) {
	scope := matScope("harina")
	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scope, entity.ActionSet, 10, at(0)),
			event(scope, entity.ActionAdd, 99, at(30)),
		},
	}

	reading, err := newService(f).CurrentStock(context.Background(), scope, at(15))
	require.NoError(t, err)
	assert.True(t, reading.Available.Equal(dec(10)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumo implícito de producciones
// ──────────────────────────────────────────────────────────────────────────────

// El replay infiere el consumo desde la lista de componentes de la receta
// producida: no hay eventos de deducción separados que puedan contar doble.
func TestCurrentStock_ConsumoAgregadoDeProduccion(t *testing.T) {
	scope := matScope("harina")
	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scope, entity.ActionSet, 20, at(0)),
		},
		components: map[string][]entity.Component{
			"torta": {entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(2), Unit: units.Kilogram}},
		},
		logs: []*entity.ProductionLog{
			{RecipeID: "torta", QuantityProduced: dec(3), Timestamp: at(30)},
		},
	}

	reading, err := newService(f).CurrentStock(context.Background(), scope, at(60))
	require.NoError(t, err)
	assert.True(t, reading.Available.Equal(dec(14)), "20 - 3 lotes * 2 kg = 14, obtuve %s", reading.Available)
}

// La cantidad del componente se convierte a la unidad del material antes de
// descontar (receta en gramos, material en kg).
func TestCurrentStock_ConsumoConvierteUnidades(t *testing.T) {
	scope := matScope("harina")
	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events:    []*entity.StockEvent{event(scope, entity.ActionSet, 10, at(0))},
		components: map[string][]entity.Component{
			"pan": {entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(500), Unit: units.Gram}},
		},
		logs: []*entity.ProductionLog{
			{RecipeID: "pan", QuantityProduced: dec(4), Timestamp: at(30)},
		},
	}

	reading, err := newService(f).CurrentStock(context.Background(), scope, at(60))
	require.NoError(t, err)
	assert.True(t, reading.Available.Equal(dec(8)), "10 - 4 * 0.5 kg = 8, obtuve %s", reading.Available)
}

// Producciones anteriores al set vigente no se descuentan: el conteo físico ya
// las observó.
func TestCurrentStock_SetAbsorbeConsumoPrevio(t *testing.T) {
	scope := matScope("harina")
	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scope, entity.ActionSet, 20, at(40)),
		},
		components: map[string][]entity.Component{
			"torta": {entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(2), Unit: units.Kilogram}},
		},
		logs: []*entity.ProductionLog{
			{RecipeID: "torta", QuantityProduced: dec(5), Timestamp: at(10)}, // antes del set
			{RecipeID: "torta", QuantityProduced: dec(1), Timestamp: at(50)}, // después
		},
	}

	reading, err := newService(f).CurrentStock(context.Background(), scope, at(60))
	require.NoError(t, err)
	assert.True(t, reading.Available.Equal(dec(18)), "solo la producción posterior al set descuenta, obtuve %s", reading.Available)
}

// Una receta con rol premake/preproduct consume stock propio cuando otra
// producción la usa como componente.
func TestCurrentStock_ConsumoDeRecetaAnidada(t *testing.T) {
	scope := entity.StockScope{Kind: entity.KindRecipe, EntityID: "relleno"}
	f := &fakeLedger{
		events: []*entity.StockEvent{event(scope, entity.ActionAdd, 1000, at(0))},
		components: map[string][]entity.Component{
			"alfajor": {entity.PremakeComponent{RecipeID: "relleno", Quantity: dec(100)}},
		},
		logs: []*entity.ProductionLog{
			{RecipeID: "alfajor", QuantityProduced: dec(2), Timestamp: at(30)},
		},
	}

	reading, err := newService(f).CurrentStock(context.Background(), scope, at(60))
	require.NoError(t, err)
	assert.True(t, reading.Available.Equal(dec(800)), "1000 - 2 * 100 = 800, obtuve %s", reading.Available)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alcances acotados (proveedor/SKU)
// ──────────────────────────────────────────────────────────────────────────────

// Un alcance acotado a proveedor usa las líneas congeladas del desglose para
// atribuir el consumo, y solo los eventos etiquetados con ese proveedor.
func TestCurrentStock_AlcanceAcotadoPorProveedor(t *testing.T) {
	scopeA := entity.StockScope{Kind: entity.KindRawMaterial, EntityID: "harina", SupplierID: "p-a"}
	scopeB := entity.StockScope{Kind: entity.KindRawMaterial, EntityID: "harina", SupplierID: "p-b"}

	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scopeA, entity.ActionSet, 10, at(0)),
			event(scopeB, entity.ActionSet, 6, at(0)),
		},
		logs: []*entity.ProductionLog{
			{
				RecipeID: "torta", QuantityProduced: dec(1), Timestamp: at(30),
				Breakdown: []entity.ProductionLine{
					{Kind: entity.LineMaterial, ComponentID: "harina", SupplierID: "p-a", Quantity: dec(4)},
					{Kind: entity.LineMaterial, ComponentID: "harina", SupplierID: "p-b", Quantity: dec(1)},
				},
			},
		},
	}
	svc := newService(f)

	a, err := svc.CurrentStock(context.Background(), scopeA, at(60))
	require.NoError(t, err)
	assert.True(t, a.Available.Equal(dec(6)), "p-a: 10 - 4 = 6, obtuve %s", a.Available)

	b, err := svc.CurrentStock(context.Background(), scopeB, at(60))
	require.NoError(t, err)
	assert.True(t, b.Available.Equal(dec(5)), "p-b: 6 - 1 = 5, obtuve %s", b.Available)
}

// Dos conteos por proveedor se suman en el agregado: el set etiquetado cuenta
// solo su tramo, no la entidad entera. El agregado debe coincidir con la suma
// de las lecturas acotadas que usa la asignación de consumo.
func TestCurrentStock_ConteosPorProveedorSumanEnElAgregado(t *testing.T) {
	scopeA := entity.StockScope{Kind: entity.KindRawMaterial, EntityID: "harina", SupplierID: "p-a"}
	scopeB := entity.StockScope{Kind: entity.KindRawMaterial, EntityID: "harina", SupplierID: "p-b"}

	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scopeA, entity.ActionSet, 10, at(0)),
			event(scopeB, entity.ActionSet, 5, at(10)),
		},
	}
	svc := newService(f)

	agg, err := svc.CurrentStock(context.Background(), matScope("harina"), at(60))
	require.NoError(t, err)
	assert.True(t, agg.Available.Equal(dec(15)), "agregado = 10 (p-a) + 5 (p-b) = 15, obtuve %s", agg.Available)

	// Un reconteo del mismo proveedor reemplaza su contribución previa.
	f.events = append(f.events, event(scopeA, entity.ActionSet, 8, at(20)))
	agg, err = svc.CurrentStock(context.Background(), matScope("harina"), at(60))
	require.NoError(t, err)
	assert.True(t, agg.Available.Equal(dec(13)), "agregado = 8 (reconteo p-a) + 5 (p-b) = 13, obtuve %s", agg.Available)

	// La lectura acotada no cambia de reglas: su set sigue siendo absoluto.
	a, err := svc.CurrentStock(context.Background(), scopeA, at(60))
	require.NoError(t, err)
	assert.True(t, a.Available.Equal(dec(8)), "p-a acotado = último set = 8, obtuve %s", a.Available)
}

// Un conteo de la entidad completa (sin etiqueta) sigue reseteando todo, los
// tramos por proveedor incluidos.
func TestCurrentStock_ConteoCompletoReseteaTramos(t *testing.T) {
	scopeA := entity.StockScope{Kind: entity.KindRawMaterial, EntityID: "harina", SupplierID: "p-a"}

	f := &fakeLedger{
		materials: map[string]*entity.RawMaterial{"harina": harina()},
		events: []*entity.StockEvent{
			event(scopeA, entity.ActionSet, 10, at(0)),
			event(matScope("harina"), entity.ActionSet, 4, at(10)),
		},
	}

	agg, err := newService(f).CurrentStock(context.Background(), matScope("harina"), at(60))
	require.NoError(t, err)
	assert.True(t, agg.Available.Equal(dec(4)), "el conteo completo manda: 4, obtuve %s", agg.Available)
}

// Acotar a un proveedor sin vínculo con el material es un error de alcance.
func TestCurrentStock_AlcanceSinVinculo(t *testing.T) {
	f := &fakeLedger{materials: map[string]*entity.RawMaterial{"harina": harina()}}
	scope := entity.StockScope{Kind: entity.KindRawMaterial, EntityID: "harina", SupplierID: "p-z"}

	_, err := newService(f).CurrentStock(context.Background(), scope, at(0))
	var scopeErr *domain.InvalidScopeError
	assert.ErrorAs(t, err, &scopeErr)
}

// Solo las materias primas admiten alcances acotados.
func TestCurrentStock_AcotadoSoloMateriasPrimas(t *testing.T) {
	f := &fakeLedger{}
	scope := entity.StockScope{Kind: entity.KindRecipe, EntityID: "relleno", SupplierID: "p-a"}

	_, err := newService(f).CurrentStock(context.Background(), scope, at(0))
	var scopeErr *domain.InvalidScopeError
	assert.ErrorAs(t, err, &scopeErr)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bordes
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrentStock_MaterialIlimitado(t *testing.T) {
	agua := &entity.RawMaterial{ID: "agua", Unit: units.Liter, IsUnlimited: true}
	f := &fakeLedger{materials: map[string]*entity.RawMaterial{"agua": agua}}

	reading, err := newService(f).CurrentStock(context.Background(), matScope("agua"), at(0))
	require.NoError(t, err)
	assert.True(t, reading.Unlimited, "el ilimitado no pasa por el ledger")
}

func TestCurrentStock_MaterialInexistente(t *testing.T) {
	f := &fakeLedger{materials: map[string]*entity.RawMaterial{}}
	_, err := newService(f).CurrentStock(context.Background(), matScope("nope"), at(0))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurrentStock_EntradaInvalida(t *testing.T) {
	f := &fakeLedger{}
	svc := newService(f)

	_, err := svc.CurrentStock(context.Background(), entity.StockScope{Kind: "factura", EntityID: "x"}, at(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CurrentStock(context.Background(), entity.StockScope{Kind: entity.KindRecipe}, at(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Sin eventos ni producciones el stock es cero: estado válido, no error.
func TestCurrentStock_SinHistoria(t *testing.T) {
	f := &fakeLedger{materials: map[string]*entity.RawMaterial{"harina": harina()}}
	reading, err := newService(f).CurrentStock(context.Background(), matScope("harina"), at(0))
	require.NoError(t, err)
	assert.True(t, reading.Available.IsZero())
	assert.False(t, reading.Unlimited)
}
