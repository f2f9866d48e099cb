package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Costeo-api/internal/application/catalog"
	"github.com/jhoicas/Costeo-api/internal/application/ports"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de recetas y categorías
// ──────────────────────────────────────────────────────────────────────────────

type fakeCategoryRepo struct {
	categories map[string]*entity.Category
	created    int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]*entity.Category{}}
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	f.categories[c.ID] = c
	f.created++
	return nil
}
func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	return f.categories[id], nil
}
func (f *fakeCategoryRepo) GetDefault(context.Context) (*entity.Category, error) {
	for _, c := range f.categories {
		if c.IsDefault {
			return c, nil
		}
	}
	return nil, nil
}
func (f *fakeCategoryRepo) List(context.Context) ([]*entity.Category, error) {
	out := make([]*entity.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

type fakeRecipeStore struct {
	recipes    map[string]*entity.Recipe
	components map[string][]entity.Component
	history    bool
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{
		recipes:    map[string]*entity.Recipe{},
		components: map[string][]entity.Component{},
	}
}

func (f *fakeRecipeStore) Create(_ context.Context, r *entity.Recipe) error {
	f.recipes[r.ID] = r
	return nil
}
func (f *fakeRecipeStore) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	return f.recipes[id], nil
}
func (f *fakeRecipeStore) List(context.Context, bool, int, int) ([]*entity.Recipe, error) {
	return nil, nil
}
func (f *fakeRecipeStore) Update(_ context.Context, r *entity.Recipe) error {
	f.recipes[r.ID] = r
	return nil
}
func (f *fakeRecipeStore) Archive(_ context.Context, id string) error {
	f.recipes[id].IsArchived = true
	return nil
}
func (f *fakeRecipeStore) Delete(_ context.Context, id string) error {
	delete(f.recipes, id)
	return nil
}
func (f *fakeRecipeStore) HasHistory(context.Context, string) (bool, error) { return f.history, nil }
func (f *fakeRecipeStore) ComponentsOf(_ context.Context, recipeID string) ([]entity.Component, error) {
	return f.components[recipeID], nil
}
func (f *fakeRecipeStore) ReplaceComponents(_ context.Context, recipeID string, comps []entity.Component) error {
	f.components[recipeID] = comps
	return nil
}
func (f *fakeRecipeStore) LockByIDs(context.Context, []string) error { return nil }

type fakePackagingStore struct{}

func (fakePackagingStore) Create(context.Context, *entity.Packaging) error { return nil }
func (fakePackagingStore) GetByID(context.Context, string) (*entity.Packaging, error) {
	return nil, nil
}
func (fakePackagingStore) List(context.Context, bool, int, int) ([]*entity.Packaging, error) {
	return nil, nil
}
func (fakePackagingStore) Update(context.Context, *entity.Packaging) error   { return nil }
func (fakePackagingStore) Archive(context.Context, string) error             { return nil }
func (fakePackagingStore) Delete(context.Context, string) error              { return nil }
func (fakePackagingStore) HasHistory(context.Context, string) (bool, error)  { return false, nil }

type catalogTx struct {
	recipes   *fakeRecipeStore
	materials *fakeMaterialStore
}

func (t catalogTx) Run(ctx context.Context, fn func(r ports.RepoSet) error) error {
	return fn(ports.RepoSet{
		Recipes:    t.recipes,
		Materials:  t.materials,
		Packagings: fakePackagingStore{},
	})
}

type recipeFixture struct {
	recipes    *fakeRecipeStore
	categories *fakeCategoryRepo
	materials  *fakeMaterialStore
	uc         *catalog.RecipeUseCase
}

func newRecipeFixture() *recipeFixture {
	f := &recipeFixture{
		recipes:    newFakeRecipeStore(),
		categories: newFakeCategoryRepo(),
		materials:  newFakeMaterialStore(),
	}
	f.uc = catalog.NewRecipeUseCase(f.recipes, f.categories, catalogTx{f.recipes, f.materials}, nil)
	return f
}

func (f *recipeFixture) addRecipe(t *testing.T, name string, roles ...entity.Role) *entity.Recipe {
	t.Helper()
	in := catalog.RecipeInput{Name: name, Roles: roles, Unit: units.Gram}
	rs := entity.NewRoleSet(roles...)
	if rs.Has(entity.RoleSellable) || rs.Has(entity.RolePreproduct) {
		in.ProductsPerRecipe = dec(10)
	} else {
		in.BatchSize = dec(500)
	}
	r, err := f.uc.Create(context.Background(), in)
	require.NoError(t, err)
	return r
}

// ──────────────────────────────────────────────────────────────────────────────
// Altas y validación
// ──────────────────────────────────────────────────────────────────────────────

// Sin categoría explícita la receta cae en la categoría por defecto, creada al
// vuelo una sola vez.
func TestRecipeCreate_CategoriaPorDefecto(t *testing.T) {
	f := newRecipeFixture()

	a := f.addRecipe(t, "Torta", entity.RoleSellable)
	b := f.addRecipe(t, "Pan", entity.RoleSellable)

	assert.NotEmpty(t, a.CategoryID)
	assert.Equal(t, a.CategoryID, b.CategoryID)
	assert.Equal(t, 1, f.categories.created, "la categoría por defecto se crea una sola vez")
}

func TestRecipeCreate_CategoriaInexistente(t *testing.T) {
	f := newRecipeFixture()

	_, err := f.uc.Create(context.Background(), catalog.RecipeInput{
		Name:              "Torta",
		CategoryID:        "nope",
		Roles:             []entity.Role{entity.RoleSellable},
		ProductsPerRecipe: dec(10),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecipeCreate_Validaciones(t *testing.T) {
	f := newRecipeFixture()
	negativo := decimal.NewFromInt(-1)

	casos := []catalog.RecipeInput{
		{Name: "", Roles: []entity.Role{entity.RoleSellable}, ProductsPerRecipe: dec(10)},
		{Name: "Torta"}, // sin roles
		{Name: "Torta", Roles: []entity.Role{"factura"}},
		// vendible sin rendimiento
		{Name: "Torta", Roles: []entity.Role{entity.RoleSellable}},
		// premezcla pura sin tamaño de lote ni unidad
		{Name: "Relleno", Roles: []entity.Role{entity.RolePremake}},
		{Name: "Relleno", Roles: []entity.Role{entity.RolePremake}, BatchSize: dec(500)},
		{Name: "Torta", Roles: []entity.Role{entity.RoleSellable}, ProductsPerRecipe: dec(10), SellingPrice: &negativo},
	}
	for _, in := range casos {
		_, err := f.uc.Create(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "entrada: %+v", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Árbol de componentes
// ──────────────────────────────────────────────────────────────────────────────

// Un reemplazo que introduce un ciclo en el grafo se rechaza con CycleError;
// la transacción revierte el árbol.
func TestReplaceComponents_CicloRechazado(t *testing.T) {
	f := newRecipeFixture()
	a := f.addRecipe(t, "Masa A", entity.RolePremake)
	b := f.addRecipe(t, "Masa B", entity.RolePremake)

	_, err := f.uc.ReplaceComponents(context.Background(), a.ID, []catalog.ComponentInput{
		{Kind: entity.ComponentPremake, RefID: b.ID, Quantity: dec(100)},
	})
	require.NoError(t, err)

	// B → A cerraría el ciclo A → B → A.
	_, err = f.uc.ReplaceComponents(context.Background(), b.ID, []catalog.ComponentInput{
		{Kind: entity.ComponentPremake, RefID: a.ID, Quantity: dec(100)},
	})
	var cycle *domain.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Path, a.ID)
	assert.Contains(t, cycle.Path, b.ID)
}

// Un fallo de costeo que no es ciclo (material sin vínculos resolubles) no
// invalida la estructura del árbol.
func TestReplaceComponents_FalloDeCosteoNoEstructural(t *testing.T) {
	f := newRecipeFixture()
	r := f.addRecipe(t, "Torta", entity.RoleSellable)
	f.materials.materials["harina"] = &entity.RawMaterial{ID: "harina", Name: "Harina", Unit: units.Kilogram}

	comps, err := f.uc.ReplaceComponents(context.Background(), r.ID, []catalog.ComponentInput{
		{Kind: entity.ComponentRawMaterial, RefID: "harina", Quantity: dec(2), Unit: units.Kilogram},
	})
	require.NoError(t, err)
	assert.Len(t, comps, 1)
}

func TestReplaceComponents_EntradaInvalida(t *testing.T) {
	f := newRecipeFixture()
	r := f.addRecipe(t, "Torta", entity.RoleSellable)

	casos := [][]catalog.ComponentInput{
		{{Kind: entity.ComponentRawMaterial, RefID: "m", Quantity: decimal.Zero}},
		{{Kind: entity.ComponentRawMaterial, RefID: "", Quantity: dec(1)}},
		{{Kind: entity.ComponentRawMaterial, RefID: "m", Quantity: dec(1), Unit: units.Unit("oz")}},
		{{Kind: "factura", RefID: "m", Quantity: dec(1)}},
	}
	for _, inputs := range casos {
		_, err := f.uc.ReplaceComponents(context.Background(), r.ID, inputs)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "entrada: %+v", inputs)
	}

	_, err := f.uc.ReplaceComponents(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// La merma no referencia entidad alguna.
func TestReplaceComponents_Merma(t *testing.T) {
	f := newRecipeFixture()
	r := f.addRecipe(t, "Torta", entity.RoleSellable)

	comps, err := f.uc.ReplaceComponents(context.Background(), r.ID, []catalog.ComponentInput{
		{Kind: entity.ComponentLoss, Quantity: dec(50)},
	})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, entity.ComponentLoss, comps[0].Kind())
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado y categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestRecipeRemove_SoftOHard(t *testing.T) {
	f := newRecipeFixture()
	r := f.addRecipe(t, "Torta", entity.RoleSellable)

	f.recipes.history = true
	require.NoError(t, f.uc.Remove(context.Background(), r.ID))
	assert.True(t, f.recipes.recipes[r.ID].IsArchived, "con producciones se archiva")

	f.recipes.history = false
	f.recipes.recipes[r.ID].IsArchived = false
	require.NoError(t, f.uc.Remove(context.Background(), r.ID))
	assert.NotContains(t, f.recipes.recipes, r.ID, "sin historial se elimina")
}

func TestCreateCategory(t *testing.T) {
	f := newRecipeFixture()

	c, err := f.uc.CreateCategory(context.Background(), "Tortas")
	require.NoError(t, err)
	assert.Equal(t, "Tortas", c.Name)

	_, err = f.uc.CreateCategory(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
