package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// ── Proveedores ───────────────────────────────────────────────────────────────

// SupplierRequest alta/edición de proveedor.
type SupplierRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Contact     string          `json:"contact" validate:"omitempty,max=200"`
	Phone       string          `json:"phone" validate:"omitempty,max=50"`
	Email       string          `json:"email" validate:"omitempty,email"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Contact     string          `json:"contact,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Email       string          `json:"email,omitempty"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	IsDefault   bool            `json:"is_default"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToSupplierResponse mapea la entidad.
func ToSupplierResponse(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		Contact:     s.Contact,
		Phone:       s.Phone,
		Email:       s.Email,
		DiscountPct: s.DiscountPct,
		IsDefault:   s.IsDefault,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ── Materias primas ───────────────────────────────────────────────────────────

// SupplierLinkRequest un vínculo de proveedor en alta/edición de material.
type SupplierLinkRequest struct {
	SupplierID      string          `json:"supplier_id" validate:"required,uuid"`
	CostPerUnit     decimal.Decimal `json:"cost_per_unit"`
	SKU             string          `json:"sku" validate:"omitempty,max=100"`
	UnitsPerPackage decimal.Decimal `json:"units_per_package"`
	IsPrimary       bool            `json:"is_primary"`
}

// MaterialRequest alta/edición de materia prima.
type MaterialRequest struct {
	Name        string                `json:"name" validate:"required,max=200"`
	Unit        string                `json:"unit" validate:"required,oneof=g kg ml l ud"`
	IsUnlimited bool                  `json:"is_unlimited"`
	WastePct    decimal.Decimal       `json:"waste_pct"`
	Links       []SupplierLinkRequest `json:"links" validate:"dive"`
}

// SupplierLinkResponse un vínculo de proveedor con su costo efectivo resuelto.
type SupplierLinkResponse struct {
	ID                string          `json:"id"`
	SupplierID        string          `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	DiscountPct       decimal.Decimal `json:"discount_pct"`
	EffectiveUnitCost decimal.Decimal `json:"effective_unit_cost"`
	SKU               string          `json:"sku,omitempty"`
	UnitsPerPackage   decimal.Decimal `json:"units_per_package"`
	IsPrimary         bool            `json:"is_primary"`
}

// MaterialResponse salida de una materia prima con sus vínculos.
type MaterialResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Unit        string                 `json:"unit"`
	IsUnlimited bool                   `json:"is_unlimited"`
	WastePct    decimal.Decimal        `json:"waste_pct"`
	IsArchived  bool                   `json:"is_archived"`
	Links       []SupplierLinkResponse `json:"links"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ToMaterialResponse mapea la entidad, vínculos en orden de consumo.
func ToMaterialResponse(m *entity.RawMaterial) MaterialResponse {
	out := MaterialResponse{
		ID:          m.ID,
		Name:        m.Name,
		Unit:        string(m.Unit),
		IsUnlimited: m.IsUnlimited,
		WastePct:    m.WastePct,
		IsArchived:  m.IsArchived,
		Links:       []SupplierLinkResponse{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, l := range m.OrderedLinks() {
		out.Links = append(out.Links, SupplierLinkResponse{
			ID:                l.ID,
			SupplierID:        l.SupplierID,
			SupplierName:      l.SupplierName,
			CostPerUnit:       l.CostPerUnit,
			DiscountPct:       l.DiscountPct,
			EffectiveUnitCost: l.EffectiveUnitCost(),
			SKU:               l.SKU,
			UnitsPerPackage:   l.UnitsPerPackage,
			IsPrimary:         l.IsPrimary,
		})
	}
	return out
}

// ── Empaques ──────────────────────────────────────────────────────────────────

// PackagingRequest alta/edición de empaque.
type PackagingRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	QtyPerPackage   decimal.Decimal `json:"qty_per_package"`
	PricePerPackage decimal.Decimal `json:"price_per_package"`
}

// PackagingResponse salida de un empaque.
type PackagingResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	QtyPerPackage   decimal.Decimal `json:"qty_per_package"`
	PricePerPackage decimal.Decimal `json:"price_per_package"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	IsArchived      bool            `json:"is_archived"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToPackagingResponse mapea la entidad.
func ToPackagingResponse(p *entity.Packaging) PackagingResponse {
	return PackagingResponse{
		ID:              p.ID,
		Name:            p.Name,
		QtyPerPackage:   p.QtyPerPackage,
		PricePerPackage: p.PricePerPackage,
		PricePerUnit:    p.PricePerUnit(),
		IsArchived:      p.IsArchived,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ── Recetas ───────────────────────────────────────────────────────────────────

// RecipeRequest alta/edición de receta.
type RecipeRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	CategoryID        string           `json:"category_id" validate:"omitempty,uuid"`
	Unit              string           `json:"unit" validate:"omitempty,oneof=g kg ml l ud"`
	Roles             []string         `json:"roles" validate:"required,min=1,dive,oneof=sellable premake preproduct"`
	ProductsPerRecipe decimal.Decimal  `json:"products_per_recipe"`
	BatchSize         decimal.Decimal  `json:"batch_size"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	ImageRef          string           `json:"image_ref" validate:"omitempty,max=500"`
}

// ComponentRequest un componente del árbol de la receta.
type ComponentRequest struct {
	Kind     string          `json:"kind" validate:"required,oneof=raw_material packaging premake preproduct loss"`
	RefID    string          `json:"ref_id" validate:"omitempty,uuid"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit" validate:"omitempty,oneof=g kg ml l ud"`
}

// ComponentResponse un componente del árbol en respuestas.
type ComponentResponse struct {
	Kind     string          `json:"kind"`
	RefID    string          `json:"ref_id,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit,omitempty"`
}

// ToComponentResponses mapea la unión sellada.
func ToComponentResponses(comps []entity.Component) []ComponentResponse {
	out := make([]ComponentResponse, 0, len(comps))
	for _, c := range comps {
		cr := ComponentResponse{
			Kind:     string(c.Kind()),
			RefID:    entity.ComponentID(c),
			Quantity: c.Qty(),
		}
		if rm, ok := c.(entity.RawMaterialComponent); ok {
			cr.Unit = string(rm.Unit)
		}
		out = append(out, cr)
	}
	return out
}

// RecipeResponse salida de una receta.
type RecipeResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	CategoryID        string           `json:"category_id"`
	Unit              string           `json:"unit,omitempty"`
	Roles             []string         `json:"roles"`
	ProductsPerRecipe decimal.Decimal  `json:"products_per_recipe"`
	BatchSize         decimal.Decimal  `json:"batch_size"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	ImageRef          string           `json:"image_ref,omitempty"`
	LegacyCost        *decimal.Decimal `json:"legacy_cost,omitempty"`
	IsArchived        bool             `json:"is_archived"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ToRecipeResponse mapea la entidad.
func ToRecipeResponse(r *entity.Recipe) RecipeResponse {
	roles := make([]string, 0, len(r.Roles))
	for _, role := range r.Roles.List() {
		roles = append(roles, string(role))
	}
	return RecipeResponse{
		ID:                r.ID,
		Name:              r.Name,
		CategoryID:        r.CategoryID,
		Unit:              string(r.Unit),
		Roles:             roles,
		ProductsPerRecipe: r.ProductsPerRecipe,
		BatchSize:         r.BatchSize,
		SellingPrice:      r.SellingPrice,
		ImageRef:          r.ImageRef,
		LegacyCost:        r.LegacyCost,
		IsArchived:        r.IsArchived,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// ── Categorías ────────────────────────────────────────────────────────────────

// CategoryRequest alta de categoría.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// ToCategoryResponse mapea la entidad.
func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, IsDefault: c.IsDefault}
}
