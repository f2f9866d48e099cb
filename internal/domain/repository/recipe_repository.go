package repository

import (
	"context"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// RecipeRepository define el puerto de persistencia para recetas y su árbol
// de componentes.
type RecipeRepository interface {
	Create(ctx context.Context, r *entity.Recipe) error
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Recipe, error)
	Update(ctx context.Context, r *entity.Recipe) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	HasHistory(ctx context.Context, id string) (bool, error)

	// ComponentsOf devuelve los componentes de la receta (por lote).
	ComponentsOf(ctx context.Context, recipeID string) ([]entity.Component, error)
	// ReplaceComponents reemplaza el árbol de componentes de la receta.
	ReplaceComponents(ctx context.Context, recipeID string, comps []entity.Component) error

	// LockByIDs bloquea filas de recetas (FOR UPDATE) dentro de una tx.
	LockByIDs(ctx context.Context, ids []string) error
}
