package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

var _ repository.StockAuditRepository = (*StockAuditRepo)(nil)

// StockAuditRepo implementación de StockAuditRepository sobre PostgreSQL
// (usable con pool o tx).
type StockAuditRepo struct {
	q Querier
}

// NewStockAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAuditRepository(q Querier) *StockAuditRepo {
	return &StockAuditRepo{q: q}
}

const auditColumns = `id, kind, entity_id, supplier_id, sku, system_qty, physical_qty, variance, unit_cost, variance_cost, auditor, ts, created_at`

// Create persiste una auditoría de conteo.
func (r *StockAuditRepo) Create(ctx context.Context, a *entity.StockAudit) error {
	query := `
		INSERT INTO stock_audits (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())`
	_, err := r.q.Exec(ctx, query,
		a.ID, string(a.Scope.Kind), a.Scope.EntityID, a.Scope.SupplierID, a.Scope.SKU,
		a.SystemQty, a.PhysicalQty, a.Variance, a.UnitCost, a.VarianceCost, a.Auditor, a.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock audit: %w", err)
	}
	return nil
}

// ListBetween lista auditorías del rango [from, to] (cualquiera puede ser nil),
// más recientes primero, paginado. limit <= 0 lista todo.
func (r *StockAuditRepo) ListBetween(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.StockAudit, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM stock_audits
		WHERE ($1::timestamptz IS NULL OR ts >= $1)
		  AND ($2::timestamptz IS NULL OR ts <= $2)
		ORDER BY ts DESC
		LIMIT CASE WHEN $3 > 0 THEN $3 END OFFSET $4`
	rows, err := r.q.Query(ctx, query, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock audits: %w", err)
	}
	defer rows.Close()
	return collectAudits(rows)
}

// ListByEntity historial de auditorías de una entidad, más recientes primero.
func (r *StockAuditRepo) ListByEntity(ctx context.Context, kind entity.EntityKind, entityID string, limit, offset int) ([]*entity.StockAudit, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM stock_audits
		WHERE kind = $1 AND entity_id = $2
		ORDER BY ts DESC
		LIMIT CASE WHEN $3 > 0 THEN $3 END OFFSET $4`
	rows, err := r.q.Query(ctx, query, string(kind), entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock audits by entity: %w", err)
	}
	defer rows.Close()
	return collectAudits(rows)
}

func collectAudits(rows pgx.Rows) ([]*entity.StockAudit, error) {
	var out []*entity.StockAudit
	for rows.Next() {
		var a entity.StockAudit
		var kind string
		if err := rows.Scan(
			&a.ID, &kind, &a.Scope.EntityID, &a.Scope.SupplierID, &a.Scope.SKU,
			&a.SystemQty, &a.PhysicalQty, &a.Variance, &a.UnitCost, &a.VarianceCost,
			&a.Auditor, &a.Timestamp, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock audit: %w", err)
		}
		a.Scope.Kind = entity.EntityKind(kind)
		out = append(out, &a)
	}
	return out, rows.Err()
}
