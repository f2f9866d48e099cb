package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// StockEventRepository define el puerto del ledger de stock. El log es
// append-only: no hay Update ni Delete de eventos históricos.
type StockEventRepository interface {
	Append(ctx context.Context, ev *entity.StockEvent) error

	// ListByScope devuelve, ordenados por timestamp ascendente, los eventos
	// de la entidad hasta el instante dado inclusive. Para alcances
	// agregados incluye también los eventos etiquetados con proveedor/SKU.
	ListByScope(ctx context.Context, scope entity.StockScope, until time.Time) ([]*entity.StockEvent, error)

	// HasEvents indica si la entidad tiene historial en el ledger (regla
	// soft-delete).
	HasEvents(ctx context.Context, kind entity.EntityKind, entityID string) (bool, error)
}
