package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/application/ledger"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

// StockHandler expone el stock derivado del ledger, los conteos físicos y las
// correcciones manuales.
type StockHandler struct {
	stocks *ledger.Service
	counts *ledger.RecordCountUseCase
	events repository.StockEventRepository
}

// NewStockHandler construye el handler.
func NewStockHandler(stocks *ledger.Service, counts *ledger.RecordCountUseCase, events repository.StockEventRepository) *StockHandler {
	return &StockHandler{stocks: stocks, counts: counts, events: events}
}

// invalidKind respuesta estándar para un kind de ruta desconocido.
func invalidKind(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "kind debe ser raw_material, packaging o recipe",
	})
}

// scopeFromPath arma el alcance desde los params de ruta y la query.
// ok es false si el kind no es válido.
func scopeFromPath(c *fiber.Ctx) (entity.StockScope, bool) {
	kind := entity.EntityKind(c.Params("kind"))
	if !entity.ValidEntityKind(kind) {
		return entity.StockScope{}, false
	}
	return entity.StockScope{
		Kind:       kind,
		EntityID:   c.Params("id"),
		SupplierID: c.Query("supplier_id"),
		SKU:        c.Query("sku"),
	}, true
}

// Current godoc
// @Summary      Stock actual
// @Description  Deriva el stock reproduciendo el ledger de eventos; supplier_id y sku acotan el alcance (solo materias primas)
// @Tags         stock
// @Produce      json
// @Param        kind         path      string  true   "raw_material | packaging | recipe"
// @Param        id           path      string  true   "ID de la entidad"
// @Param        supplier_id  query     string  false  "Acotar al proveedor"
// @Param        sku          query     string  false  "Acotar al SKU"
// @Success      200  {object}  dto.StockReadingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/stock/{kind}/{id} [get]
func (h *StockHandler) Current(c *fiber.Ctx) error {
	scope, ok := scopeFromPath(c)
	if !ok {
		return invalidKind(c)
	}

	asOf := time.Now()
	reading, err := h.stocks.CurrentStock(c.Context(), scope, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToStockReadingResponse(scope, reading, asOf))
}

// Events godoc
// @Summary      Historial de eventos de stock
// @Tags         stock
// @Produce      json
// @Param        kind         path      string  true   "raw_material | packaging | recipe"
// @Param        id           path      string  true   "ID de la entidad"
// @Param        supplier_id  query     string  false  "Acotar al proveedor"
// @Param        sku          query     string  false  "Acotar al SKU"
// @Success      200  {array}  dto.StockEventResponse
// @Security     Bearer
// @Router       /api/stock/{kind}/{id}/events [get]
func (h *StockHandler) Events(c *fiber.Ctx) error {
	scope, ok := scopeFromPath(c)
	if !ok {
		return invalidKind(c)
	}

	events, err := h.events.ListByScope(c.Context(), scope, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.ToStockEventResponse(ev))
	}
	return c.JSON(out)
}

// RecordCount godoc
// @Summary      Registrar conteo físico
// @Description  Calcula la varianza contra el stock del sistema, la valoriza al costo vigente y sella el ledger con un evento set
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        kind  path      string            true  "raw_material | packaging | recipe"
// @Param        id    path      string            true  "ID de la entidad"
// @Param        body  body      dto.CountRequest  true  "Conteo"
// @Success      201   {object}  dto.StockAuditResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/stock/{kind}/{id}/count [post]
func (h *StockHandler) RecordCount(c *fiber.Ctx) error {
	kind := entity.EntityKind(c.Params("kind"))
	if !entity.ValidEntityKind(kind) {
		return invalidKind(c)
	}
	var req dto.CountRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	audit, err := h.counts.RecordCount(c.Context(), ledger.CountInput{
		Kind:        kind,
		EntityID:    c.Params("id"),
		SupplierID:  req.SupplierID,
		SKU:         req.SKU,
		PhysicalQty: req.PhysicalQty,
		Auditor:     GetUserID(c),
		Timestamp:   time.Now(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStockAuditResponse(audit))
}

// RecordAdjustment godoc
// @Summary      Registrar corrección manual
// @Description  Agrega un evento add con signo; la cantidad no puede ser cero
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        kind  path      string                 true  "raw_material | packaging | recipe"
// @Param        id    path      string                 true  "ID de la entidad"
// @Param        body  body      dto.AdjustmentRequest  true  "Corrección"
// @Success      201   {object}  dto.StockEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/stock/{kind}/{id}/events [post]
func (h *StockHandler) RecordAdjustment(c *fiber.Ctx) error {
	kind := entity.EntityKind(c.Params("kind"))
	if !entity.ValidEntityKind(kind) {
		return invalidKind(c)
	}
	var req dto.AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	event, err := h.counts.RecordAdjustment(c.Context(), ledger.AdjustmentInput{
		Kind:       kind,
		EntityID:   c.Params("id"),
		SupplierID: req.SupplierID,
		SKU:        req.SKU,
		Quantity:   req.Quantity,
		Note:       req.Note,
		CreatedBy:  GetUserID(c),
		Timestamp:  time.Now(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStockEventResponse(event))
}
