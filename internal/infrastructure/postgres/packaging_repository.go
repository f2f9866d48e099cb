package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

var _ repository.PackagingRepository = (*PackagingRepo)(nil)

// PackagingRepo implementación de PackagingRepository sobre PostgreSQL (usable con pool o tx).
type PackagingRepo struct {
	q Querier
}

// NewPackagingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPackagingRepository(q Querier) *PackagingRepo {
	return &PackagingRepo{q: q}
}

// Create persiste un empaque.
func (r *PackagingRepo) Create(ctx context.Context, p *entity.Packaging) error {
	query := `
		INSERT INTO packagings (id, name, qty_per_package, price_per_package, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.QtyPerPackage, p.PricePerPackage, p.IsArchived, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert packaging: %w", err)
	}
	return nil
}

// GetByID obtiene un empaque, nil si no existe.
func (r *PackagingRepo) GetByID(ctx context.Context, id string) (*entity.Packaging, error) {
	query := `
		SELECT id, name, qty_per_package, price_per_package, is_archived, created_at, updated_at
		FROM packagings WHERE id = $1`
	var p entity.Packaging
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.QtyPerPackage, &p.PricePerPackage, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get packaging: %w", err)
	}
	return &p, nil
}

// List lista empaques, paginado. limit <= 0 lista todo.
func (r *PackagingRepo) List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Packaging, error) {
	query := `
		SELECT id, name, qty_per_package, price_per_package, is_archived, created_at, updated_at
		FROM packagings
		WHERE ($1 OR NOT is_archived)
		ORDER BY name ASC
		LIMIT CASE WHEN $2 > 0 THEN $2 END OFFSET $3`
	rows, err := r.q.Query(ctx, query, includeArchived, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list packagings: %w", err)
	}
	defer rows.Close()

	var out []*entity.Packaging
	for rows.Next() {
		var p entity.Packaging
		if err := rows.Scan(&p.ID, &p.Name, &p.QtyPerPackage, &p.PricePerPackage, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan packaging: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Update actualiza un empaque.
func (r *PackagingRepo) Update(ctx context.Context, p *entity.Packaging) error {
	query := `
		UPDATE packagings
		SET name = $2, qty_per_package = $3, price_per_package = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.QtyPerPackage, p.PricePerPackage, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update packaging: %w", err)
	}
	return nil
}

// Archive marca soft-delete.
func (r *PackagingRepo) Archive(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE packagings SET is_archived = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive packaging: %w", err)
	}
	return nil
}

// Delete elimina físicamente el empaque.
func (r *PackagingRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM packagings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete packaging: %w", err)
	}
	return nil
}

// HasHistory indica si el empaque tiene eventos de ledger o referencias en
// recetas.
func (r *PackagingRepo) HasHistory(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock_events WHERE kind = 'packaging' AND entity_id = $1)
		    OR EXISTS (SELECT 1 FROM recipe_components WHERE kind = 'packaging' AND ref_id = $1)`
	var has bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("packaging has history: %w", err)
	}
	return has, nil
}
