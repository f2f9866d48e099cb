package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

var _ repository.StockEventRepository = (*StockEventRepo)(nil)

// StockEventRepo implementación del ledger sobre PostgreSQL (usable con pool o
// tx). La tabla es append-only: no hay UPDATE ni DELETE.
type StockEventRepo struct {
	q Querier
}

// NewStockEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockEventRepository(q Querier) *StockEventRepo {
	return &StockEventRepo{q: q}
}

// Append agrega un evento al ledger.
func (r *StockEventRepo) Append(ctx context.Context, ev *entity.StockEvent) error {
	query := `
		INSERT INTO stock_events (id, kind, entity_id, supplier_id, sku, action, quantity, ts, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`
	_, err := r.q.Exec(ctx, query,
		ev.ID, string(ev.Scope.Kind), ev.Scope.EntityID, ev.Scope.SupplierID, ev.Scope.SKU,
		string(ev.Action), ev.Quantity, ev.Timestamp, ev.Note, ev.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("append stock event: %w", err)
	}
	return nil
}

// ListByScope devuelve los eventos de la entidad hasta until inclusive, en
// orden ascendente. Un alcance agregado incluye los eventos etiquetados con
// cualquier proveedor/SKU; uno acotado filtra por la etiqueta.
func (r *StockEventRepo) ListByScope(ctx context.Context, scope entity.StockScope, until time.Time) ([]*entity.StockEvent, error) {
	query := `
		SELECT id, kind, entity_id, supplier_id, sku, action, quantity, ts, note, created_by, created_at
		FROM stock_events
		WHERE kind = $1 AND entity_id = $2 AND ts <= $3
		  AND ($4 = '' OR supplier_id = $4)
		  AND ($5 = '' OR sku = $5)
		ORDER BY ts ASC, created_at ASC`
	rows, err := r.q.Query(ctx, query, string(scope.Kind), scope.EntityID, until, scope.SupplierID, scope.SKU)
	if err != nil {
		return nil, fmt.Errorf("list stock events: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockEvent
	for rows.Next() {
		var ev entity.StockEvent
		var kind, action string
		if err := rows.Scan(
			&ev.ID, &kind, &ev.Scope.EntityID, &ev.Scope.SupplierID, &ev.Scope.SKU,
			&action, &ev.Quantity, &ev.Timestamp, &ev.Note, &ev.CreatedBy, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock event: %w", err)
		}
		ev.Scope.Kind = entity.EntityKind(kind)
		ev.Action = entity.EventAction(action)
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// HasEvents indica si la entidad tiene historial en el ledger.
func (r *StockEventRepo) HasEvents(ctx context.Context, kind entity.EntityKind, entityID string) (bool, error) {
	var has bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_events WHERE kind = $1 AND entity_id = $2)`,
		string(kind), entityID,
	).Scan(&has)
	if err != nil {
		return false, fmt.Errorf("has stock events: %w", err)
	}
	return has, nil
}
