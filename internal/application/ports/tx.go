// Package ports define los puertos transversales de la capa de aplicación.
package ports

import (
	"context"

	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

// RepoSet repositorios atados a una misma transacción de BD.
type RepoSet struct {
	Materials   repository.RawMaterialRepository
	Recipes     repository.RecipeRepository
	Packagings  repository.PackagingRepository
	Events      repository.StockEventRepository
	Productions repository.ProductionLogRepository
	Audits      repository.StockAuditRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el ejecutor de
// producción y los conteos de stock (Commit si fn devuelve nil, Rollback si no).
type TxRunner interface {
	Run(ctx context.Context, fn func(r RepoSet) error) error
}
