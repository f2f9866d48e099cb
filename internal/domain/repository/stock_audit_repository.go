package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// StockAuditRepository define el puerto de persistencia para auditorías de
// conteo físico.
type StockAuditRepository interface {
	Create(ctx context.Context, a *entity.StockAudit) error
	ListBetween(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.StockAudit, error)
	ListByEntity(ctx context.Context, kind entity.EntityKind, entityID string, limit, offset int) ([]*entity.StockAudit, error)
}
