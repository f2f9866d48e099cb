package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/application/costing"
	"github.com/jhoicas/Costeo-api/internal/application/ports"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// RecipeUseCase mantiene el catálogo de recetas y su árbol de componentes.
// ReplaceComponents es transaccional: aplica el reemplazo y re-verifica que el
// grafo siga siendo acíclico antes de confirmar.
type RecipeUseCase struct {
	recipes    repository.RecipeRepository
	categories repository.CategoryRepository
	tx         ports.TxRunner
	log        *logger.Logger
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(
	recipes repository.RecipeRepository,
	categories repository.CategoryRepository,
	tx ports.TxRunner,
	log *logger.Logger,
) *RecipeUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RecipeUseCase{recipes: recipes, categories: categories, tx: tx, log: log}
}

// RecipeInput datos de alta/edición de receta.
type RecipeInput struct {
	Name              string
	CategoryID        string
	Unit              units.Unit
	Roles             []entity.Role
	ProductsPerRecipe decimal.Decimal
	BatchSize         decimal.Decimal
	SellingPrice      *decimal.Decimal
	ImageRef          string
}

// ComponentInput un componente del árbol, discriminado por Kind.
type ComponentInput struct {
	Kind     entity.ComponentKind
	RefID    string // id de material, empaque o receta; vacío para merma
	Quantity decimal.Decimal
	Unit     units.Unit // solo materias primas
}

func (in RecipeInput) validate() error {
	if in.Name == "" || len(in.Roles) == 0 {
		return domain.ErrInvalidInput
	}
	for _, r := range in.Roles {
		switch r {
		case entity.RoleSellable, entity.RolePremake, entity.RolePreproduct:
		default:
			return domain.ErrInvalidInput
		}
	}
	roles := entity.NewRoleSet(in.Roles...)
	if (roles.Has(entity.RoleSellable) || roles.Has(entity.RolePreproduct)) &&
		in.ProductsPerRecipe.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if roles.Has(entity.RolePremake) && !roles.Has(entity.RoleSellable) && !roles.Has(entity.RolePreproduct) {
		if in.BatchSize.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if !in.Unit.Valid() {
			return domain.ErrInvalidInput
		}
	}
	if in.SellingPrice != nil && in.SellingPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// Create da de alta una receta sin componentes. Sin categoría se asigna la
// categoría por defecto (factoría idempotente).
func (uc *RecipeUseCase) Create(ctx context.Context, in RecipeInput) (*entity.Recipe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	categoryID, err := uc.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	r := &entity.Recipe{
		ID:                uuid.New().String(),
		Name:              in.Name,
		CategoryID:        categoryID,
		Unit:              in.Unit,
		Roles:             entity.NewRoleSet(in.Roles...),
		ProductsPerRecipe: in.ProductsPerRecipe,
		BatchSize:         in.BatchSize,
		SellingPrice:      in.SellingPrice,
		ImageRef:          in.ImageRef,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.recipes.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetByID devuelve la receta o ErrNotFound.
func (uc *RecipeUseCase) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	r, err := uc.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// List lista recetas, paginado.
func (uc *RecipeUseCase) List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Recipe, error) {
	return uc.recipes.List(ctx, includeArchived, limit, offset)
}

// Components devuelve el árbol de componentes de la receta.
func (uc *RecipeUseCase) Components(ctx context.Context, recipeID string) ([]entity.Component, error) {
	if _, err := uc.GetByID(ctx, recipeID); err != nil {
		return nil, err
	}
	return uc.recipes.ComponentsOf(ctx, recipeID)
}

// Update edita los datos base de la receta. Editar la receta cambia el costo
// calculado de las producciones futuras; los registros históricos conservan su
// desglose congelado.
func (uc *RecipeUseCase) Update(ctx context.Context, id string, in RecipeInput) (*entity.Recipe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	r, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	categoryID, err := uc.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	r.Name = in.Name
	r.CategoryID = categoryID
	r.Unit = in.Unit
	r.Roles = entity.NewRoleSet(in.Roles...)
	r.ProductsPerRecipe = in.ProductsPerRecipe
	r.BatchSize = in.BatchSize
	r.SellingPrice = in.SellingPrice
	r.ImageRef = in.ImageRef
	r.UpdatedAt = time.Now()
	if err := uc.recipes.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ReplaceComponents reemplaza el árbol de componentes dentro de una
// transacción y re-verifica aciclicidad resolviendo el costo de la receta con
// el árbol nuevo ya aplicado. Un ciclo revierte el reemplazo con CycleError.
func (uc *RecipeUseCase) ReplaceComponents(ctx context.Context, recipeID string, inputs []ComponentInput) ([]entity.Component, error) {
	if _, err := uc.GetByID(ctx, recipeID); err != nil {
		return nil, err
	}
	comps, err := buildComponents(inputs)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Run(ctx, func(r ports.RepoSet) error {
		if err := r.Recipes.LockByIDs(ctx, []string{recipeID}); err != nil {
			return err
		}
		if err := r.Recipes.ReplaceComponents(ctx, recipeID, comps); err != nil {
			return err
		}
		// Resolver el costo recorre el grafo completo: si el árbol nuevo
		// introduce un ciclo, falla aquí y la tx revierte.
		engine := costing.New(r.Recipes, r.Materials, r.Packagings, uc.log, false)
		_, err := engine.UnitCost(ctx, recipeID)
		var cycle *domain.CycleError
		if errors.As(err, &cycle) {
			return cycle
		}
		// Otros fallos de costeo (ej. material sin vínculos) no invalidan
		// la estructura del árbol.
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comps, nil
}

// Remove archiva la receta si tiene historial (producciones o eventos de
// stock) y la elimina físicamente si no.
func (uc *RecipeUseCase) Remove(ctx context.Context, id string) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	has, err := uc.recipes.HasHistory(ctx, id)
	if err != nil {
		return err
	}
	if has {
		uc.log.Info().Str("recipe_id", id).Msg("receta con historial: se archiva")
		return uc.recipes.Archive(ctx, id)
	}
	return uc.recipes.Delete(ctx, id)
}

// Categories lista las categorías.
func (uc *RecipeUseCase) Categories(ctx context.Context) ([]*entity.Category, error) {
	return uc.categories.List(ctx)
}

// CreateCategory da de alta una categoría.
func (uc *RecipeUseCase) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	c := &entity.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveCategory valida la categoría indicada o asegura la categoría por
// defecto cuando viene vacía.
func (uc *RecipeUseCase) resolveCategory(ctx context.Context, categoryID string) (string, error) {
	if categoryID != "" {
		c, err := uc.categories.GetByID(ctx, categoryID)
		if err != nil {
			return "", err
		}
		if c == nil {
			return "", domain.ErrNotFound
		}
		return c.ID, nil
	}
	def, err := uc.categories.GetDefault(ctx)
	if err != nil {
		return "", err
	}
	if def == nil {
		now := time.Now()
		def = &entity.Category{
			ID:        uuid.New().String(),
			Name:      entity.DefaultCategoryName,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.categories.Create(ctx, def); err != nil {
			return "", err
		}
		uc.log.Info().Str("category_id", def.ID).Msg("categoría por defecto creada")
	}
	return def.ID, nil
}

// buildComponents materializa la unión sellada desde la entrada discriminada.
func buildComponents(inputs []ComponentInput) ([]entity.Component, error) {
	comps := make([]entity.Component, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		switch in.Kind {
		case entity.ComponentRawMaterial:
			if in.RefID == "" {
				return nil, domain.ErrInvalidInput
			}
			if in.Unit != "" && !in.Unit.Valid() {
				return nil, domain.ErrInvalidInput
			}
			comps = append(comps, entity.RawMaterialComponent{MaterialID: in.RefID, Quantity: in.Quantity, Unit: in.Unit})
		case entity.ComponentPackaging:
			if in.RefID == "" {
				return nil, domain.ErrInvalidInput
			}
			comps = append(comps, entity.PackagingComponent{PackagingID: in.RefID, Quantity: in.Quantity})
		case entity.ComponentPremake:
			if in.RefID == "" {
				return nil, domain.ErrInvalidInput
			}
			comps = append(comps, entity.PremakeComponent{RecipeID: in.RefID, Quantity: in.Quantity})
		case entity.ComponentPreproduct:
			if in.RefID == "" {
				return nil, domain.ErrInvalidInput
			}
			comps = append(comps, entity.PreproductComponent{RecipeID: in.RefID, Quantity: in.Quantity})
		case entity.ComponentLoss:
			comps = append(comps, entity.LossComponent{Quantity: in.Quantity})
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	return comps, nil
}
