// Package units implementa la conversión de cantidades entre unidades de
// medida compatibles. Servicio de dominio puro, sin estado.
package units

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit unidad de medida del catálogo fijo.
type Unit string

// Unidades soportadas.
const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Piece      Unit = "ud" // unidades/piezas
)

// ErrIncompatibleUnits se devuelve cuando las unidades no pertenecen a la
// misma magnitud (ej. gramos a litros).
var ErrIncompatibleUnits = fmt.Errorf("unidades incompatibles")

var mil = decimal.NewFromInt(1000)

// Valid indica si la unidad pertenece al catálogo.
func (u Unit) Valid() bool {
	switch u {
	case Gram, Kilogram, Milliliter, Liter, Piece:
		return true
	}
	return false
}

// Convert convierte una cantidad de una unidad a otra. Soporta identidad,
// g↔kg y ml↔l. Cualquier otro par devuelve ErrIncompatibleUnits en lugar del
// fallback silencioso del sistema legado (ver DESIGN.md).
func Convert(qty decimal.Decimal, from, to Unit) (decimal.Decimal, error) {
	if from == to {
		return qty, nil
	}
	switch {
	case from == Gram && to == Kilogram:
		return qty.Div(mil), nil
	case from == Kilogram && to == Gram:
		return qty.Mul(mil), nil
	case from == Milliliter && to == Liter:
		return qty.Div(mil), nil
	case from == Liter && to == Milliliter:
		return qty.Mul(mil), nil
	}
	return decimal.Zero, fmt.Errorf("convertir %s a %s: %w", from, to, ErrIncompatibleUnits)
}
