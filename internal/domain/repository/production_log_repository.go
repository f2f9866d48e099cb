package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// ProductionLogRepository define el puerto de persistencia para registros de
// producción. Los registros también son eventos del ledger: ListUntil
// alimenta el replay de stock.
type ProductionLogRepository interface {
	Create(ctx context.Context, log *entity.ProductionLog) error
	GetByID(ctx context.Context, id string) (*entity.ProductionLog, error)
	ListBetween(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.ProductionLog, error)

	// ListUntil devuelve todos los registros con timestamp <= until,
	// ordenados ascendentemente, con su desglose (replay del ledger).
	ListUntil(ctx context.Context, until time.Time) ([]*entity.ProductionLog, error)

	// HasForRecipe indica si la receta tiene producciones registradas.
	HasForRecipe(ctx context.Context, recipeID string) (bool, error)
}
