package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación de RecipeRepository sobre PostgreSQL (usable con
// pool o tx). Los roles se guardan como text[]; los componentes en
// recipe_components con discriminante kind y posición estable.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

const recipeColumns = `id, name, category_id, unit, roles, products_per_recipe, batch_size, selling_price, image_ref, legacy_cost, is_archived, created_at, updated_at`

// Create persiste una receta (sin componentes).
func (r *RecipeRepo) Create(ctx context.Context, rec *entity.Recipe) error {
	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.Name, rec.CategoryID, string(rec.Unit), rolesToStrings(rec.Roles),
		rec.ProductsPerRecipe, rec.BatchSize, rec.SellingPrice, rec.ImageRef,
		rec.LegacyCost, rec.IsArchived, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// GetByID obtiene una receta, nil si no existe.
func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`
	rec, err := scanRecipeRow(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return rec, nil
}

// List lista recetas, paginado. limit <= 0 lista todo.
func (r *RecipeRepo) List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE ($1 OR NOT is_archived)
		ORDER BY name ASC
		LIMIT CASE WHEN $2 > 0 THEN $2 END OFFSET $3`
	rows, err := r.q.Query(ctx, query, includeArchived, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Recipe
	for rows.Next() {
		rec, err := scanRecipeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update actualiza los datos base de la receta (no los componentes).
func (r *RecipeRepo) Update(ctx context.Context, rec *entity.Recipe) error {
	query := `
		UPDATE recipes
		SET name = $2, category_id = $3, unit = $4, roles = $5, products_per_recipe = $6,
		    batch_size = $7, selling_price = $8, image_ref = $9, legacy_cost = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.Name, rec.CategoryID, string(rec.Unit), rolesToStrings(rec.Roles),
		rec.ProductsPerRecipe, rec.BatchSize, rec.SellingPrice, rec.ImageRef,
		rec.LegacyCost, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

// Archive marca soft-delete.
func (r *RecipeRepo) Archive(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE recipes SET is_archived = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive recipe: %w", err)
	}
	return nil
}

// Delete elimina físicamente la receta y sus componentes.
func (r *RecipeRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM recipe_components WHERE recipe_id = $1`, id); err != nil {
		return fmt.Errorf("delete recipe components: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// HasHistory indica si la receta tiene producciones, eventos de ledger o se
// consume como componente de otra receta.
func (r *RecipeRepo) HasHistory(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM production_logs WHERE recipe_id = $1)
		    OR EXISTS (SELECT 1 FROM stock_events WHERE kind = 'recipe' AND entity_id = $1)
		    OR EXISTS (SELECT 1 FROM recipe_components WHERE kind IN ('premake', 'preproduct') AND ref_id = $1)`
	var has bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("recipe has history: %w", err)
	}
	return has, nil
}

// ComponentsOf devuelve los componentes de la receta en su orden de posición.
func (r *RecipeRepo) ComponentsOf(ctx context.Context, recipeID string) ([]entity.Component, error) {
	query := `
		SELECT kind, ref_id, quantity, unit
		FROM recipe_components
		WHERE recipe_id = $1
		ORDER BY position ASC`
	rows, err := r.q.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list recipe components: %w", err)
	}
	defer rows.Close()

	var out []entity.Component
	for rows.Next() {
		var kind, refID, unit string
		var qty decimal.Decimal
		if err := rows.Scan(&kind, &refID, &qty, &unit); err != nil {
			return nil, fmt.Errorf("scan recipe component: %w", err)
		}
		c, err := buildComponent(entity.ComponentKind(kind), refID, qty, units.Unit(unit))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceComponents reemplaza el árbol de componentes de la receta.
func (r *RecipeRepo) ReplaceComponents(ctx context.Context, recipeID string, comps []entity.Component) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM recipe_components WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("delete recipe components: %w", err)
	}
	for i, c := range comps {
		var unit string
		if rm, ok := c.(entity.RawMaterialComponent); ok {
			unit = string(rm.Unit)
		}
		query := `
			INSERT INTO recipe_components (recipe_id, position, kind, ref_id, quantity, unit)
			VALUES ($1, $2, $3, $4, $5, $6)`
		_, err := r.q.Exec(ctx, query, recipeID, i, string(c.Kind()), entity.ComponentID(c), c.Qty(), unit)
		if err != nil {
			return fmt.Errorf("insert recipe component: %w", err)
		}
	}
	return nil
}

// LockByIDs bloquea las filas (SELECT FOR UPDATE) dentro de una tx.
func (r *RecipeRepo) LockByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx, `SELECT id FROM recipes WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return fmt.Errorf("lock recipes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
	}
	return rows.Err()
}

// scanRecipeRow reconstruye la entidad desde una fila (pgx.Row o pgx.Rows).
func scanRecipeRow(row pgx.Row) (*entity.Recipe, error) {
	var rec entity.Recipe
	var unit string
	var roles []string
	if err := row.Scan(
		&rec.ID, &rec.Name, &rec.CategoryID, &unit, &roles,
		&rec.ProductsPerRecipe, &rec.BatchSize, &rec.SellingPrice, &rec.ImageRef,
		&rec.LegacyCost, &rec.IsArchived, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Unit = units.Unit(unit)
	rs := make([]entity.Role, 0, len(roles))
	for _, role := range roles {
		rs = append(rs, entity.Role(role))
	}
	rec.Roles = entity.NewRoleSet(rs...)
	return &rec, nil
}

func rolesToStrings(s entity.RoleSet) []string {
	out := make([]string, 0, len(s))
	for _, r := range s.List() {
		out = append(out, string(r))
	}
	return out
}

// buildComponent materializa la unión sellada desde la fila discriminada.
func buildComponent(kind entity.ComponentKind, refID string, qty decimal.Decimal, unit units.Unit) (entity.Component, error) {
	switch kind {
	case entity.ComponentRawMaterial:
		return entity.RawMaterialComponent{MaterialID: refID, Quantity: qty, Unit: unit}, nil
	case entity.ComponentPackaging:
		return entity.PackagingComponent{PackagingID: refID, Quantity: qty}, nil
	case entity.ComponentPremake:
		return entity.PremakeComponent{RecipeID: refID, Quantity: qty}, nil
	case entity.ComponentPreproduct:
		return entity.PreproductComponent{RecipeID: refID, Quantity: qty}, nil
	case entity.ComponentLoss:
		return entity.LossComponent{Quantity: qty}, nil
	}
	return nil, fmt.Errorf("recipe component kind desconocido: %q", kind)
}
