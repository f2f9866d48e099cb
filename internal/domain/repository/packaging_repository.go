package repository

import (
	"context"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// PackagingRepository define el puerto de persistencia para empaques.
type PackagingRepository interface {
	Create(ctx context.Context, p *entity.Packaging) error
	GetByID(ctx context.Context, id string) (*entity.Packaging, error)
	List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Packaging, error)
	Update(ctx context.Context, p *entity.Packaging) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	HasHistory(ctx context.Context, id string) (bool, error)
}
