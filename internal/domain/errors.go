package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrNoSupplierLinks    = errors.New("la materia prima no tiene proveedores vinculados")
	ErrHasHistory         = errors.New("la entidad tiene historial en el ledger y no puede eliminarse")
)

// InsufficientStockError una producción excede el stock disponible derivado
// del ledger para un componente. Recuperable: el llamador corrige cantidades
// o repone stock; nunca deja escrituras parciales.
type InsufficientStockError struct {
	Component string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: requerido %s, disponible %s",
		e.Component, e.Required.String(), e.Available.String())
}

// CycleError el grafo de componentes contiene un ciclo; el costeo de esa
// receta no puede resolverse. Path lleva los ids visitados hasta repetir.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "ciclo en el árbol de componentes: " + strings.Join(e.Path, " -> ")
}

// DanglingComponentError un componente referencia una entidad eliminada o
// inexistente. Solo se devuelve en modo estricto del motor de costos; el
// modo por defecto (compatible con el sistema legado) aporta costo cero y
// deja una advertencia en el log.
type DanglingComponentError struct {
	Kind        string
	ComponentID string
}

func (e *DanglingComponentError) Error() string {
	return fmt.Sprintf("componente colgante %s/%s: la entidad referenciada no existe", e.Kind, e.ComponentID)
}

// InvalidScopeError un evento o consulta de stock referencia un proveedor o
// SKU que no está vinculado al material.
type InvalidScopeError struct {
	EntityID   string
	SupplierID string
	SKU        string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("alcance inválido: el material %s no tiene vínculo con proveedor=%q sku=%q",
		e.EntityID, e.SupplierID, e.SKU)
}

// ValidationErrors acumula todas las fallas de validación de un lote de
// producción (fase 1 del protocolo dos fases): si hay una sola falla, el lote
// completo se rechaza sin efectos.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validación del lote fallida (%d): %s", len(v), strings.Join(msgs, "; "))
}

// Unwrap permite errors.Is/As sobre las fallas individuales.
func (v ValidationErrors) Unwrap() []error { return v }
