package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// RawMaterial representa una materia prima del catálogo. IsUnlimited marca
// materiales de stock infinito (agua, por ejemplo) que no pasan por el ledger.
type RawMaterial struct {
	ID          string
	Name        string
	Unit        units.Unit
	IsUnlimited bool
	WastePct    decimal.Decimal // 0–99, merma esperada
	IsArchived  bool            // soft-delete cuando existe historial
	Links       []SupplierLink
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SupplierLink vincula una materia prima con un proveedor (costo, SKU y
// bandera de primario). Invariante: a lo sumo un vínculo primario por material.
// SupplierName y DiscountPct se denormalizan al cargar (join con suppliers)
// para resolver costos efectivos y orden determinista sin ir a la DB.
type SupplierLink struct {
	ID              string
	MaterialID      string
	SupplierID      string
	SupplierName    string
	DiscountPct     decimal.Decimal
	CostPerUnit     decimal.Decimal
	SKU             string
	UnitsPerPackage decimal.Decimal
	IsPrimary       bool
}

var cien = decimal.NewFromInt(100)

// EffectiveUnitCost devuelve el costo unitario con el descuento del proveedor
// aplicado: costo * (1 - descuento/100).
func (l SupplierLink) EffectiveUnitCost() decimal.Decimal {
	factor := cien.Sub(l.DiscountPct).Div(cien)
	return l.CostPerUnit.Mul(factor)
}

// PrimaryLink devuelve el vínculo primario, o el primero si ninguno está
// marcado, o nil si el material no tiene proveedores.
func (m *RawMaterial) PrimaryLink() *SupplierLink {
	for i := range m.Links {
		if m.Links[i].IsPrimary {
			return &m.Links[i]
		}
	}
	if len(m.Links) > 0 {
		return &m.Links[0]
	}
	return nil
}

// OrderedLinks devuelve los vínculos en el orden de consumo: primario primero
// y el resto por nombre de proveedor (desempate determinista).
func (m *RawMaterial) OrderedLinks() []SupplierLink {
	out := make([]SupplierLink, len(m.Links))
	copy(out, m.Links)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].SupplierName < out[j].SupplierName
	})
	return out
}

// HasLink indica si el material tiene un vínculo con ese proveedor (y SKU,
// si se indica). Se usa para validar alcances de eventos de stock.
func (m *RawMaterial) HasLink(supplierID, sku string) bool {
	for _, l := range m.Links {
		if supplierID != "" && l.SupplierID != supplierID {
			continue
		}
		if sku != "" && l.SKU != sku {
			continue
		}
		return true
	}
	return false
}
