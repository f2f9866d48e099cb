package costing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Costeo-api/internal/application/costing"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de las fuentes del motor
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	recipes    map[string]*entity.Recipe
	components map[string][]entity.Component
	materials  map[string]*entity.RawMaterial
	packagings map[string]*entity.Packaging
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	return f.recipes[id], nil
}

func (f *fakeCatalog) ComponentsOf(_ context.Context, recipeID string) ([]entity.Component, error) {
	return f.components[recipeID], nil
}

type fakeMaterials struct{ m map[string]*entity.RawMaterial }

func (f *fakeMaterials) GetByID(_ context.Context, id string) (*entity.RawMaterial, error) {
	return f.m[id], nil
}

type fakePackagings struct{ p map[string]*entity.Packaging }

func (f *fakePackagings) GetByID(_ context.Context, id string) (*entity.Packaging, error) {
	return f.p[id], nil
}

func newEngine(cat *fakeCatalog, strict bool) *costing.Engine {
	return costing.New(cat, &fakeMaterials{m: cat.materials}, &fakePackagings{p: cat.packagings}, nil, strict)
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func material(id string, unit units.Unit, cost, discount float64) *entity.RawMaterial {
	return &entity.RawMaterial{
		ID:   id,
		Name: "material " + id,
		Unit: unit,
		Links: []entity.SupplierLink{{
			SupplierID:   "prov-1",
			SupplierName: "Proveedor general",
			CostPerUnit:  dec(cost),
			DiscountPct:  dec(discount),
			IsPrimary:    true,
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Casos
// ──────────────────────────────────────────────────────────────────────────────

// Receta plana: dos materias primas y un empaque, normalizada por rendimiento.
func TestUnitCost_RecetaPlana(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"torta": {
				ID:                "torta",
				Roles:             entity.NewRoleSet(entity.RoleSellable),
				ProductsPerRecipe: dec(10),
			},
		},
		components: map[string][]entity.Component{
			"torta": {
				entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(2), Unit: units.Kilogram},
				entity.RawMaterialComponent{MaterialID: "azucar", Quantity: dec(1), Unit: units.Kilogram},
				entity.PackagingComponent{PackagingID: "caja", Quantity: dec(10)},
			},
		},
		materials: map[string]*entity.RawMaterial{
			// harina: 1000/kg con 10% de descuento → 900 efectivo
			"harina": material("harina", units.Kilogram, 1000, 10),
			"azucar": material("azucar", units.Kilogram, 2000, 0),
		},
		packagings: map[string]*entity.Packaging{
			// 500 el paquete de 10 → 50 por unidad
			"caja": {ID: "caja", QtyPerPackage: dec(10), PricePerPackage: dec(500)},
		},
	}

	cost, err := newEngine(cat, false).UnitCost(context.Background(), "torta")
	require.NoError(t, err)

	// (2*900 + 1*2000 + 10*50) / 10 = 4300 / 10 = 430
	assert.True(t, cost.Equal(dec(430)), "costo unitario esperado 430, obtuve %s", cost)
}

// La cantidad del componente puede venir en otra unidad compatible: 500 g de
// un material comprado en kg se convierte antes de valorar.
func TestUnitCost_ConversionDeUnidades(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"pan": {ID: "pan", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(1)},
		},
		components: map[string][]entity.Component{
			"pan": {entity.RawMaterialComponent{MaterialID: "harina", Quantity: dec(500), Unit: units.Gram}},
		},
		materials: map[string]*entity.RawMaterial{
			"harina": material("harina", units.Kilogram, 1000, 0),
		},
	}

	cost, err := newEngine(cat, false).UnitCost(context.Background(), "pan")
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec(500)), "500 g a 1000/kg = 500, obtuve %s", cost)
}

// Premezcla anidada: su costo unitario se resuelve recursivamente y se
// multiplica por la cantidad consumida.
func TestUnitCost_PremezclaAnidada(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"relleno": {ID: "relleno", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(1000)},
			"alfajor": {ID: "alfajor", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(20)},
		},
		components: map[string][]entity.Component{
			// 2000 de azúcar rinden 1000 g de relleno → 2 por gramo
			"relleno": {entity.RawMaterialComponent{MaterialID: "azucar", Quantity: dec(1), Unit: units.Kilogram}},
			// 100 g de relleno por lote de 20 alfajores
			"alfajor": {entity.PremakeComponent{RecipeID: "relleno", Quantity: dec(100)}},
		},
		materials: map[string]*entity.RawMaterial{
			"azucar": material("azucar", units.Kilogram, 2000, 0),
		},
	}

	cost, err := newEngine(cat, false).UnitCost(context.Background(), "alfajor")
	require.NoError(t, err)
	// relleno: 2000/1000 = 2 por gramo; alfajor: 100*2/20 = 10
	assert.True(t, cost.Equal(dec(10)), "esperado 10, obtuve %s", cost)
}

// Un ciclo en el grafo se detecta y falla con CycleError, nunca con recursión
// infinita. La merma (loss) no aporta costo.
func TestUnitCost_CicloDetectado(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"a": {ID: "a", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(1)},
			"b": {ID: "b", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(1)},
		},
		components: map[string][]entity.Component{
			"a": {entity.PremakeComponent{RecipeID: "b", Quantity: dec(1)}},
			"b": {
				entity.LossComponent{Quantity: dec(5)},
				entity.PremakeComponent{RecipeID: "a", Quantity: dec(1)},
			},
		},
	}

	_, err := newEngine(cat, false).UnitCost(context.Background(), "a")
	var cycle *domain.CycleError
	require.ErrorAs(t, err, &cycle, "el ciclo a→b→a debe reportarse como CycleError")
	assert.Contains(t, cycle.Path, "a")
	assert.Contains(t, cycle.Path, "b")
}

// Un diamante (dos ramas que convergen en la misma premezcla) NO es un ciclo.
func TestUnitCost_DiamanteNoEsCiclo(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"base":  {ID: "base", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(1)},
			"rama1": {ID: "rama1", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(1)},
			"rama2": {ID: "rama2", Roles: entity.NewRoleSet(entity.RolePremake), BatchSize: dec(1)},
			"tope":  {ID: "tope", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(1)},
		},
		components: map[string][]entity.Component{
			"base":  {entity.RawMaterialComponent{MaterialID: "azucar", Quantity: dec(1), Unit: units.Kilogram}},
			"rama1": {entity.PremakeComponent{RecipeID: "base", Quantity: dec(1)}},
			"rama2": {entity.PremakeComponent{RecipeID: "base", Quantity: dec(1)}},
			"tope": {
				entity.PremakeComponent{RecipeID: "rama1", Quantity: dec(1)},
				entity.PremakeComponent{RecipeID: "rama2", Quantity: dec(1)},
			},
		},
		materials: map[string]*entity.RawMaterial{
			"azucar": material("azucar", units.Kilogram, 2000, 0),
		},
	}

	cost, err := newEngine(cat, false).UnitCost(context.Background(), "tope")
	require.NoError(t, err, "un diamante no debe reportarse como ciclo")
	assert.True(t, cost.Equal(dec(4000)), "esperado 4000, obtuve %s", cost)
}

// Registros migrados conservan su costo congelado: el árbol no se resuelve.
func TestUnitCost_LegacyCost(t *testing.T) {
	legacy := dec(123.45)
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"migrada": {ID: "migrada", LegacyCost: &legacy},
		},
		// Componentes presentes a propósito: no deben valorarse.
		components: map[string][]entity.Component{
			"migrada": {entity.RawMaterialComponent{MaterialID: "inexistente", Quantity: dec(99)}},
		},
	}

	cost, err := newEngine(cat, true).UnitCost(context.Background(), "migrada")
	require.NoError(t, err)
	assert.True(t, cost.Equal(legacy), "debe devolverse el costo congelado tal cual")
}

// Política ante componentes colgantes: el modo laxo valora cero, el estricto
// falla con DanglingComponentError.
func TestUnitCost_ComponenteColgante(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"r": {ID: "r", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(1)},
		},
		components: map[string][]entity.Component{
			"r": {entity.RawMaterialComponent{MaterialID: "borrado", Quantity: dec(1)}},
		},
	}

	cost, err := newEngine(cat, false).UnitCost(context.Background(), "r")
	require.NoError(t, err, "en modo laxo el colgante no es error")
	assert.True(t, cost.IsZero(), "el colgante aporta costo cero")

	_, err = newEngine(cat, true).UnitCost(context.Background(), "r")
	var dangling *domain.DanglingComponentError
	require.ErrorAs(t, err, &dangling, "en modo estricto el colgante debe fallar")
	assert.Equal(t, "borrado", dangling.ComponentID)
}

// Material sin vínculos de proveedor: no hay precio con que valorar.
func TestUnitCost_MaterialSinProveedores(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"r": {ID: "r", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: dec(1)},
		},
		components: map[string][]entity.Component{
			"r": {entity.RawMaterialComponent{MaterialID: "huerfano", Quantity: dec(1)}},
		},
		materials: map[string]*entity.RawMaterial{
			"huerfano": {ID: "huerfano", Unit: units.Kilogram},
		},
	}

	_, err := newEngine(cat, false).UnitCost(context.Background(), "r")
	assert.ErrorIs(t, err, domain.ErrNoSupplierLinks)
}

// Rendimiento no positivo: el costo es cero por definición, no un error.
func TestUnitCost_RendimientoCero(t *testing.T) {
	cat := &fakeCatalog{
		recipes: map[string]*entity.Recipe{
			"r": {ID: "r", Roles: entity.NewRoleSet(entity.RoleSellable), ProductsPerRecipe: decimal.Zero},
		},
		components: map[string][]entity.Component{
			"r": {entity.RawMaterialComponent{MaterialID: "azucar", Quantity: dec(1), Unit: units.Kilogram}},
		},
		materials: map[string]*entity.RawMaterial{
			"azucar": material("azucar", units.Kilogram, 2000, 0),
		},
	}

	cost, err := newEngine(cat, false).UnitCost(context.Background(), "r")
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}
