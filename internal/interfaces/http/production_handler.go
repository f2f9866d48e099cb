package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/application/production"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

// ProductionHandler maneja las corridas de producción y su historial.
type ProductionHandler struct {
	executor *production.Executor
	logs     repository.ProductionLogRepository
}

// NewProductionHandler construye el handler.
func NewProductionHandler(executor *production.Executor, logs repository.ProductionLogRepository) *ProductionHandler {
	return &ProductionHandler{executor: executor, logs: logs}
}

// Produce godoc
// @Summary      Registrar producción
// @Description  Valida stock, congela el desglose de costos al precio vigente y descuenta insumos
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ProduceRequest  true  "Producción"
// @Success      201   {object}  dto.ProductionLogResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/production [post]
func (h *ProductionHandler) Produce(c *fiber.Ctx) error {
	var req dto.ProduceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	log, err := h.executor.Produce(c.Context(), production.ProduceInput{
		RecipeID: req.RecipeID,
		Batches:  req.Batches,
	}, time.Now(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductionLogResponse(log))
}

// ProduceBatch godoc
// @Summary      Registrar lote de producciones
// @Description  Valida el stock agregado de todos los ítems antes de comprometer; todo o nada
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body      dto.BatchProduceRequest  true  "Lote"
// @Success      201   {array}   dto.ProductionLogResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/production/batch [post]
func (h *ProductionHandler) ProduceBatch(c *fiber.Ctx) error {
	var req dto.BatchProduceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "el lote debe incluir al menos un ítem",
		})
	}

	items := make([]production.ProduceInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, production.ProduceInput{
			RecipeID: it.RecipeID,
			Batches:  it.Batches,
		})
	}
	logs, err := h.executor.ProduceBatch(c.Context(), items, time.Now(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.ProductionLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, dto.ToProductionLogResponse(log))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar producciones
// @Tags         production
// @Produce      json
// @Param        from    query     string  false  "Desde (RFC3339)"
// @Param        to      query     string  false  "Hasta (RFC3339)"
// @Param        limit   query     int     false  "Límite"
// @Param        offset  query     int     false  "Offset"
// @Success      200  {array}  dto.ProductionLogResponse
// @Security     Bearer
// @Router       /api/production [get]
func (h *ProductionHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()
	var dates dto.DateRange
	if err := c.QueryParser(&dates); err != nil {
		return invalidBody(c)
	}

	logs, err := h.logs.ListBetween(c.Context(), dates.From, dates.To, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductionLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, dto.ToProductionLogResponse(log))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producción
// @Description  Devuelve el registro con su desglose de costos congelado
// @Tags         production
// @Produce      json
// @Param        id   path      string  true  "ID de la producción"
// @Success      200  {object}  dto.ProductionLogResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/production/{id} [get]
func (h *ProductionHandler) GetByID(c *fiber.Ctx) error {
	log, err := h.logs.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if log == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(dto.ToProductionLogResponse(log))
}
