package repository

import (
	"context"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetDefault(ctx context.Context) (*entity.Supplier, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	HasHistory(ctx context.Context, id string) (bool, error)
}
