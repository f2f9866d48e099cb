package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

// RawMaterialRepo implementación de RawMaterialRepository sobre PostgreSQL
// (usable con pool o tx). Los vínculos se cargan con join a suppliers para
// denormalizar nombre y descuento del proveedor.
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

// Create persiste la materia prima y sus vínculos.
func (r *RawMaterialRepo) Create(ctx context.Context, m *entity.RawMaterial) error {
	query := `
		INSERT INTO raw_materials (id, name, unit, is_unlimited, waste_pct, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, string(m.Unit), m.IsUnlimited, m.WastePct, m.IsArchived, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert raw material: %w", err)
	}
	return r.insertLinks(ctx, m.ID, m.Links)
}

// GetByID obtiene la materia prima con sus vínculos, nil si no existe.
func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	query := `
		SELECT id, name, unit, is_unlimited, waste_pct, is_archived, created_at, updated_at
		FROM raw_materials WHERE id = $1`
	var m entity.RawMaterial
	var unit string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &unit, &m.IsUnlimited, &m.WastePct, &m.IsArchived, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	m.Unit = units.Unit(unit)
	links, err := r.linksOf(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Links = links
	return &m, nil
}

// List lista materias primas con sus vínculos, paginado. limit <= 0 lista todo.
func (r *RawMaterialRepo) List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.RawMaterial, error) {
	query := `
		SELECT id, name, unit, is_unlimited, waste_pct, is_archived, created_at, updated_at
		FROM raw_materials
		WHERE ($1 OR NOT is_archived)
		ORDER BY name ASC
		LIMIT CASE WHEN $2 > 0 THEN $2 END OFFSET $3`
	rows, err := r.q.Query(ctx, query, includeArchived, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	defer rows.Close()

	var out []*entity.RawMaterial
	for rows.Next() {
		var m entity.RawMaterial
		var unit string
		if err := rows.Scan(&m.ID, &m.Name, &unit, &m.IsUnlimited, &m.WastePct, &m.IsArchived, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		m.Unit = units.Unit(unit)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range out {
		links, err := r.linksOf(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		m.Links = links
	}
	return out, nil
}

// Update actualiza los datos base (no los vínculos).
func (r *RawMaterialRepo) Update(ctx context.Context, m *entity.RawMaterial) error {
	query := `
		UPDATE raw_materials
		SET name = $2, unit = $3, is_unlimited = $4, waste_pct = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, m.ID, m.Name, string(m.Unit), m.IsUnlimited, m.WastePct, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update raw material: %w", err)
	}
	return nil
}

// ReplaceLinks reemplaza los vínculos del material.
func (r *RawMaterialRepo) ReplaceLinks(ctx context.Context, materialID string, links []entity.SupplierLink) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM supplier_links WHERE material_id = $1`, materialID); err != nil {
		return fmt.Errorf("delete supplier links: %w", err)
	}
	return r.insertLinks(ctx, materialID, links)
}

// Archive marca soft-delete.
func (r *RawMaterialRepo) Archive(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE raw_materials SET is_archived = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive raw material: %w", err)
	}
	return nil
}

// Delete elimina físicamente el material y sus vínculos.
func (r *RawMaterialRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM supplier_links WHERE material_id = $1`, id); err != nil {
		return fmt.Errorf("delete supplier links: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM raw_materials WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete raw material: %w", err)
	}
	return nil
}

// HasHistory indica si el material tiene eventos de ledger, consumo en
// producciones o referencias en recetas.
func (r *RawMaterialRepo) HasHistory(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock_events WHERE kind = 'raw_material' AND entity_id = $1)
		    OR EXISTS (SELECT 1 FROM recipe_components WHERE kind = 'raw_material' AND ref_id = $1)
		    OR EXISTS (
		        SELECT 1 FROM production_logs, jsonb_array_elements(breakdown) line
		        WHERE line->>'kind' = 'material' AND line->>'component_id' = $1
		    )`
	var has bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("raw material has history: %w", err)
	}
	return has, nil
}

// LockByIDs bloquea las filas (SELECT FOR UPDATE) dentro de una tx.
func (r *RawMaterialRepo) LockByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx, `SELECT id FROM raw_materials WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return fmt.Errorf("lock raw materials: %w", err)
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

// linksOf carga los vínculos con nombre y descuento del proveedor.
func (r *RawMaterialRepo) linksOf(ctx context.Context, materialID string) ([]entity.SupplierLink, error) {
	query := `
		SELECT l.id, l.material_id, l.supplier_id, s.name, s.discount_pct,
		       l.cost_per_unit, l.sku, l.units_per_package, l.is_primary
		FROM supplier_links l
		JOIN suppliers s ON s.id = l.supplier_id
		WHERE l.material_id = $1
		ORDER BY l.is_primary DESC, s.name ASC`
	rows, err := r.q.Query(ctx, query, materialID)
	if err != nil {
		return nil, fmt.Errorf("list supplier links: %w", err)
	}
	defer rows.Close()

	var out []entity.SupplierLink
	for rows.Next() {
		var l entity.SupplierLink
		if err := rows.Scan(
			&l.ID, &l.MaterialID, &l.SupplierID, &l.SupplierName, &l.DiscountPct,
			&l.CostPerUnit, &l.SKU, &l.UnitsPerPackage, &l.IsPrimary,
		); err != nil {
			return nil, fmt.Errorf("scan supplier link: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *RawMaterialRepo) insertLinks(ctx context.Context, materialID string, links []entity.SupplierLink) error {
	for _, l := range links {
		query := `
			INSERT INTO supplier_links (id, material_id, supplier_id, cost_per_unit, sku, units_per_package, is_primary)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := r.q.Exec(ctx, query,
			l.ID, materialID, l.SupplierID, l.CostPerUnit, l.SKU, l.UnitsPerPackage, l.IsPrimary,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert supplier link: %w", err)
		}
	}
	return nil
}
