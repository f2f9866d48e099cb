package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

var noventaYNueve = decimal.NewFromInt(99)

// MaterialUseCase mantiene el catálogo de materias primas y sus vínculos de
// proveedor.
type MaterialUseCase struct {
	materials repository.RawMaterialRepository
	suppliers *SupplierUseCase
	log       *logger.Logger
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(materials repository.RawMaterialRepository, suppliers *SupplierUseCase, log *logger.Logger) *MaterialUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &MaterialUseCase{materials: materials, suppliers: suppliers, log: log}
}

// MaterialInput datos de alta/edición de materia prima.
type MaterialInput struct {
	Name        string
	Unit        units.Unit
	IsUnlimited bool
	WastePct    decimal.Decimal
	Links       []LinkInput
}

// LinkInput un vínculo de proveedor de la materia prima.
type LinkInput struct {
	SupplierID      string
	CostPerUnit     decimal.Decimal
	SKU             string
	UnitsPerPackage decimal.Decimal
	IsPrimary       bool
}

func (in MaterialInput) validate() error {
	if in.Name == "" || !in.Unit.Valid() {
		return domain.ErrInvalidInput
	}
	if in.WastePct.IsNegative() || in.WastePct.GreaterThan(noventaYNueve) {
		return domain.ErrInvalidInput
	}
	primaries := 0
	for _, l := range in.Links {
		if l.SupplierID == "" || l.CostPerUnit.IsNegative() {
			return domain.ErrInvalidInput
		}
		if l.IsPrimary {
			primaries++
		}
	}
	// Invariante: a lo sumo un primario.
	if primaries > 1 {
		return domain.ErrInvalidInput
	}
	return nil
}

// Create da de alta una materia prima. Si no trae vínculos se le asigna el
// proveedor por defecto como primario con costo cero: todo material tiene
// siempre al menos un vínculo resoluble. Si trae vínculos y ninguno es
// primario, el primero queda como primario.
func (uc *MaterialUseCase) Create(ctx context.Context, in MaterialInput) (*entity.RawMaterial, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	links, err := uc.buildLinks(ctx, in.Links)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.RawMaterial{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Unit:        in.Unit,
		IsUnlimited: in.IsUnlimited,
		WastePct:    in.WastePct,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range links {
		links[i].MaterialID = m.ID
	}
	m.Links = links
	if err := uc.materials.Create(ctx, m); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, m.ID)
}

// GetByID devuelve la materia prima con sus vínculos, o ErrNotFound.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	m, err := uc.materials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// List lista materias primas, paginado.
func (uc *MaterialUseCase) List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.RawMaterial, error) {
	return uc.materials.List(ctx, includeArchived, limit, offset)
}

// Update edita los datos base de la materia prima (no los vínculos).
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in MaterialInput) (*entity.RawMaterial, error) {
	if in.Name == "" || !in.Unit.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if in.WastePct.IsNegative() || in.WastePct.GreaterThan(noventaYNueve) {
		return nil, domain.ErrInvalidInput
	}
	m, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name = in.Name
	m.Unit = in.Unit
	m.IsUnlimited = in.IsUnlimited
	m.WastePct = in.WastePct
	m.UpdatedAt = time.Now()
	if err := uc.materials.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReplaceLinks reemplaza los vínculos de proveedor del material, aplicando la
// normalización de primario. El costo efectivo de producciones futuras cambia;
// los desgloses registrados no se tocan.
func (uc *MaterialUseCase) ReplaceLinks(ctx context.Context, materialID string, inputs []LinkInput) (*entity.RawMaterial, error) {
	if _, err := uc.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	primaries := 0
	for _, l := range inputs {
		if l.SupplierID == "" || l.CostPerUnit.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if l.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return nil, domain.ErrInvalidInput
	}
	links, err := uc.buildLinks(ctx, inputs)
	if err != nil {
		return nil, err
	}
	for i := range links {
		links[i].MaterialID = materialID
	}
	if err := uc.materials.ReplaceLinks(ctx, materialID, links); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, materialID)
}

// Remove archiva la materia prima si tiene historial (eventos de ledger o
// producciones que la consumen) y la elimina físicamente si no.
func (uc *MaterialUseCase) Remove(ctx context.Context, id string) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	has, err := uc.materials.HasHistory(ctx, id)
	if err != nil {
		return err
	}
	if has {
		uc.log.Info().Str("material_id", id).Msg("materia prima con historial: se archiva")
		return uc.materials.Archive(ctx, id)
	}
	return uc.materials.Delete(ctx, id)
}

// buildLinks materializa los vínculos: valida proveedores, normaliza el
// primario y crea el vínculo de respaldo cuando no hay ninguno.
func (uc *MaterialUseCase) buildLinks(ctx context.Context, inputs []LinkInput) ([]entity.SupplierLink, error) {
	if len(inputs) == 0 {
		def, err := uc.suppliers.EnsureDefault(ctx)
		if err != nil {
			return nil, err
		}
		return []entity.SupplierLink{{
			ID:         uuid.New().String(),
			SupplierID: def.ID,
			IsPrimary:  true,
		}}, nil
	}

	links := make([]entity.SupplierLink, 0, len(inputs))
	hasPrimary := false
	for _, in := range inputs {
		s, err := uc.suppliers.GetByID(ctx, in.SupplierID)
		if err != nil {
			return nil, err
		}
		links = append(links, entity.SupplierLink{
			ID:              uuid.New().String(),
			SupplierID:      s.ID,
			SupplierName:    s.Name,
			DiscountPct:     s.DiscountPct,
			CostPerUnit:     in.CostPerUnit,
			SKU:             in.SKU,
			UnitsPerPackage: in.UnitsPerPackage,
			IsPrimary:       in.IsPrimary,
		})
		if in.IsPrimary {
			hasPrimary = true
		}
	}
	if !hasPrimary {
		links[0].IsPrimary = true
	}
	return links, nil
}
