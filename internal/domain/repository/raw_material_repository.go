package repository

import (
	"context"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// RawMaterialRepository define el puerto de persistencia para materias primas
// y sus vínculos con proveedores. GetByID y List cargan los vínculos con el
// descuento del proveedor denormalizado (join con suppliers).
type RawMaterialRepository interface {
	Create(ctx context.Context, m *entity.RawMaterial) error
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
	List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.RawMaterial, error)
	Update(ctx context.Context, m *entity.RawMaterial) error

	// ReplaceLinks reemplaza los vínculos de proveedor del material.
	ReplaceLinks(ctx context.Context, materialID string, links []entity.SupplierLink) error

	// Archive marca soft-delete; Delete elimina físicamente. La regla
	// soft/hard según historial la aplica el caso de uso con HasHistory.
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	HasHistory(ctx context.Context, id string) (bool, error)

	// LockByIDs bloquea las filas (SELECT ... FOR UPDATE) para serializar
	// validación y commit de producciones concurrentes sobre los mismos
	// materiales. Solo tiene efecto dentro de una transacción.
	LockByIDs(ctx context.Context, ids []string) error
}
