// Package catalog contiene los casos de uso de mantenimiento del catálogo:
// proveedores, materias primas, empaques, recetas y categorías. Las entidades
// con historial (producciones o eventos de ledger) nunca se borran físicamente,
// se archivan.
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

var cien = decimal.NewFromInt(100)

// SupplierUseCase mantiene el catálogo de proveedores.
type SupplierUseCase struct {
	suppliers repository.SupplierRepository
	log       *logger.Logger
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(suppliers repository.SupplierRepository, log *logger.Logger) *SupplierUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SupplierUseCase{suppliers: suppliers, log: log}
}

// SupplierInput datos de alta/edición de proveedor.
type SupplierInput struct {
	Name        string
	Contact     string
	Phone       string
	Email       string
	DiscountPct decimal.Decimal
}

func (in SupplierInput) validate() error {
	if in.Name == "" {
		return domain.ErrInvalidInput
	}
	if in.DiscountPct.IsNegative() || in.DiscountPct.GreaterThan(cien) {
		return domain.ErrInvalidInput
	}
	return nil
}

// Create da de alta un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, in SupplierInput) (*entity.Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Contact:     in.Contact,
		Phone:       in.Phone,
		Email:       in.Email,
		DiscountPct: in.DiscountPct,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.suppliers.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID devuelve el proveedor o ErrNotFound.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := uc.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// List lista proveedores, paginado.
func (uc *SupplierUseCase) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Supplier, error) {
	return uc.suppliers.List(ctx, activeOnly, limit, offset)
}

// Update edita el proveedor. El cambio de descuento afecta todos los costos
// efectivos derivados de sus vínculos a partir de ahora; los desgloses de
// producción ya registrados quedan congelados.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in SupplierInput) (*entity.Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	s, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Name = in.Name
	s.Contact = in.Contact
	s.Phone = in.Phone
	s.Email = in.Email
	s.DiscountPct = in.DiscountPct
	s.UpdatedAt = time.Now()
	if err := uc.suppliers.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Remove desactiva el proveedor si tiene historial (vínculos o eventos de
// stock etiquetados) y lo elimina físicamente si no. El proveedor por defecto
// no se elimina.
func (uc *SupplierUseCase) Remove(ctx context.Context, id string) error {
	s, err := uc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.IsDefault {
		return domain.ErrConflict
	}
	has, err := uc.suppliers.HasHistory(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return uc.suppliers.Deactivate(ctx, id)
	}
	return uc.suppliers.Delete(ctx, id)
}

// EnsureDefault devuelve el proveedor por defecto, creándolo si no existe
// (factoría idempotente). Es el primario de respaldo para materias primas
// dadas de alta sin vínculos.
func (uc *SupplierUseCase) EnsureDefault(ctx context.Context) (*entity.Supplier, error) {
	s, err := uc.suppliers.GetDefault(ctx)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	now := time.Now()
	s = &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      entity.DefaultSupplierName,
		IsDefault: true,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.suppliers.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("supplier_id", s.ID).Msg("proveedor por defecto creado")
	return s, nil
}
