// Package dto define los contratos de entrada/salida de la capa HTTP.
package dto

import "time"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// DateRange rango de fechas opcional para listados y reportes.
type DateRange struct {
	From *time.Time `query:"from"`
	To   *time.Time `query:"to"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details lista los fallos individuales de una validación de lote.
	Details []string `json:"details,omitempty"`
}
