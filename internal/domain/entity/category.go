package entity

import "time"

// DefaultCategoryName nombre de la categoría por defecto para recetas creadas
// sin categoría (factoría idempotente EnsureDefault, ver catalog).
const DefaultCategoryName = "General"

// Category representa una categoría de recetas/productos.
type Category struct {
	ID        string
	Name      string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
