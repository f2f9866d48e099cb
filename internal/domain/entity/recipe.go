package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// Role capacidad de una receta. Los roles no son excluyentes: una receta
// "híbrida" puede venderse como producto y a la vez consumirse como premezcla.
type Role string

// Roles válidos.
const (
	RoleSellable   Role = "sellable"   // producto vendible (rinde en unidades)
	RolePremake    Role = "premake"    // premezcla intermedia (rinde en masa/volumen)
	RolePreproduct Role = "preproduct" // preproducto consumido por otras recetas (unidades)
)

// RoleSet conjunto de capacidades de una receta.
type RoleSet map[Role]struct{}

// NewRoleSet construye el conjunto a partir de los roles indicados.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has indica si la receta tiene la capacidad.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// List devuelve los roles en orden estable (para persistencia y respuestas).
func (s RoleSet) List() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Recipe representa un ítem producido: producto vendible, premezcla o
// preproducto según sus roles. LegacyCost congela el costo de registros
// migrados del sistema anterior; cuando no es nil el motor de costos lo
// devuelve tal cual sin resolver el árbol de componentes.
type Recipe struct {
	ID                string
	Name              string
	CategoryID        string
	Unit              units.Unit
	Roles             RoleSet
	ProductsPerRecipe decimal.Decimal  // rendimiento por lote (vendibles/preproductos)
	BatchSize         decimal.Decimal  // rendimiento por lote en masa/volumen (premezclas)
	SellingPrice      *decimal.Decimal // nil para ítems no vendibles
	ImageRef          string
	LegacyCost        *decimal.Decimal
	IsArchived        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Yield devuelve el rendimiento de un lote: ProductsPerRecipe para vendibles
// y preproductos, BatchSize para premezclas puras. Las híbridas
// (vendible+premezcla) rinden en unidades.
func (r *Recipe) Yield() decimal.Decimal {
	if r.Roles.Has(RoleSellable) || r.Roles.Has(RolePreproduct) {
		return r.ProductsPerRecipe
	}
	if r.Roles.Has(RolePremake) {
		return r.BatchSize
	}
	return decimal.Zero
}

// StockTracked indica si la producción de la receta genera stock propio
// (premezclas y preproductos se consumen luego como componentes).
func (r *Recipe) StockTracked() bool {
	return r.Roles.Has(RolePremake) || r.Roles.Has(RolePreproduct)
}
