package entity

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// ComponentKind discriminante de componente para persistencia y DTOs.
type ComponentKind string

// Tipos de componente de una receta.
const (
	ComponentRawMaterial ComponentKind = "raw_material"
	ComponentPackaging   ComponentKind = "packaging"
	ComponentPremake     ComponentKind = "premake"
	ComponentPreproduct  ComponentKind = "preproduct"
	ComponentLoss        ComponentKind = "loss"
)

// Component es la unión sellada de los componentes de una receta. El motor de
// costos hace type switch exhaustivo sobre las cinco variantes; no hay
// dispatch por strings.
type Component interface {
	Kind() ComponentKind
	Qty() decimal.Decimal
	component()
}

// RawMaterialComponent consumo de materia prima por lote de la receta.
// Unit permite expresar la cantidad en una unidad distinta a la del material
// (ej. receta en gramos, material comprado en kg); vacío = unidad del material.
type RawMaterialComponent struct {
	MaterialID string
	Quantity   decimal.Decimal
	Unit       units.Unit
}

// PackagingComponent empaque usado por lote. Su costo es informativo: el
// empaque se costea al momento de la venta, no de la producción.
type PackagingComponent struct {
	PackagingID string
	Quantity    decimal.Decimal
}

// PremakeComponent premezcla anidada consumida por lote (en masa/volumen).
type PremakeComponent struct {
	RecipeID string
	Quantity decimal.Decimal
}

// PreproductComponent preproducto anidado consumido por lote (en unidades).
type PreproductComponent struct {
	RecipeID string
	Quantity decimal.Decimal
}

// LossComponent merma por lote. No aporta costo: la pérdida ya redujo el
// rendimiento neto aguas arriba.
type LossComponent struct {
	Quantity decimal.Decimal
}

func (c RawMaterialComponent) Kind() ComponentKind { return ComponentRawMaterial }
func (c PackagingComponent) Kind() ComponentKind   { return ComponentPackaging }
func (c PremakeComponent) Kind() ComponentKind     { return ComponentPremake }
func (c PreproductComponent) Kind() ComponentKind  { return ComponentPreproduct }
func (c LossComponent) Kind() ComponentKind        { return ComponentLoss }

func (c RawMaterialComponent) Qty() decimal.Decimal { return c.Quantity }
func (c PackagingComponent) Qty() decimal.Decimal   { return c.Quantity }
func (c PremakeComponent) Qty() decimal.Decimal     { return c.Quantity }
func (c PreproductComponent) Qty() decimal.Decimal  { return c.Quantity }
func (c LossComponent) Qty() decimal.Decimal        { return c.Quantity }

func (RawMaterialComponent) component() {}
func (PackagingComponent) component()   {}
func (PremakeComponent) component()     {}
func (PreproductComponent) component()  {}
func (LossComponent) component()        {}

// ComponentID devuelve el id de la entidad referenciada por el componente
// (vacío para merma).
func ComponentID(c Component) string {
	switch v := c.(type) {
	case RawMaterialComponent:
		return v.MaterialID
	case PackagingComponent:
		return v.PackagingID
	case PremakeComponent:
		return v.RecipeID
	case PreproductComponent:
		return v.RecipeID
	}
	return ""
}
