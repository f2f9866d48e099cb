package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// PackagingUseCase mantiene el catálogo de empaques.
type PackagingUseCase struct {
	packagings repository.PackagingRepository
	log        *logger.Logger
}

// NewPackagingUseCase construye el caso de uso.
func NewPackagingUseCase(packagings repository.PackagingRepository, log *logger.Logger) *PackagingUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PackagingUseCase{packagings: packagings, log: log}
}

// PackagingInput datos de alta/edición de empaque.
type PackagingInput struct {
	Name            string
	QtyPerPackage   decimal.Decimal
	PricePerPackage decimal.Decimal
}

func (in PackagingInput) validate() error {
	if in.Name == "" {
		return domain.ErrInvalidInput
	}
	if in.QtyPerPackage.LessThanOrEqual(decimal.Zero) || in.PricePerPackage.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// Create da de alta un empaque.
func (uc *PackagingUseCase) Create(ctx context.Context, in PackagingInput) (*entity.Packaging, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Packaging{
		ID:              uuid.New().String(),
		Name:            in.Name,
		QtyPerPackage:   in.QtyPerPackage,
		PricePerPackage: in.PricePerPackage,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.packagings.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID devuelve el empaque o ErrNotFound.
func (uc *PackagingUseCase) GetByID(ctx context.Context, id string) (*entity.Packaging, error) {
	p, err := uc.packagings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// List lista empaques, paginado.
func (uc *PackagingUseCase) List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Packaging, error) {
	return uc.packagings.List(ctx, includeArchived, limit, offset)
}

// Update edita el empaque.
func (uc *PackagingUseCase) Update(ctx context.Context, id string, in PackagingInput) (*entity.Packaging, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.QtyPerPackage = in.QtyPerPackage
	p.PricePerPackage = in.PricePerPackage
	p.UpdatedAt = time.Now()
	if err := uc.packagings.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Remove archiva el empaque si tiene historial y lo elimina físicamente si no.
func (uc *PackagingUseCase) Remove(ctx context.Context, id string) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	has, err := uc.packagings.HasHistory(ctx, id)
	if err != nil {
		return err
	}
	if has {
		uc.log.Info().Str("packaging_id", id).Msg("empaque con historial: se archiva")
		return uc.packagings.Archive(ctx, id)
	}
	return uc.packagings.Delete(ctx, id)
}
