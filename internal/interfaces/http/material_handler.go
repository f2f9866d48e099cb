package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/application/catalog"
	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/application/pricing"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// MaterialHandler maneja el CRUD de materias primas y sus vínculos de proveedor.
type MaterialHandler struct {
	uc       *catalog.MaterialUseCase
	resolver *pricing.Resolver
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *catalog.MaterialUseCase, resolver *pricing.Resolver) *MaterialHandler {
	return &MaterialHandler{uc: uc, resolver: resolver}
}

func toMaterialInput(req dto.MaterialRequest) catalog.MaterialInput {
	in := catalog.MaterialInput{
		Name:        req.Name,
		Unit:        units.Unit(req.Unit),
		IsUnlimited: req.IsUnlimited,
		WastePct:    req.WastePct,
	}
	for _, l := range req.Links {
		in.Links = append(in.Links, toLinkInput(l))
	}
	return in
}

func toLinkInput(l dto.SupplierLinkRequest) catalog.LinkInput {
	return catalog.LinkInput{
		SupplierID:      l.SupplierID,
		CostPerUnit:     l.CostPerUnit,
		SKU:             l.SKU,
		UnitsPerPackage: l.UnitsPerPackage,
		IsPrimary:       l.IsPrimary,
	}
}

// Create godoc
// @Summary      Crear materia prima
// @Description  Si no se envían vínculos se crea uno primario contra el proveedor general
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        body  body      dto.MaterialRequest  true  "Materia prima"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/materials [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var req dto.MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	m, err := h.uc.Create(c.Context(), toMaterialInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMaterialResponse(m))
}

// List godoc
// @Summary      Listar materias primas
// @Tags         materials
// @Produce      json
// @Param        include_archived  query     bool  false  "Incluir archivadas"
// @Param        limit             query     int   false  "Límite"
// @Param        offset            query     int   false  "Offset"
// @Success      200  {array}  dto.MaterialResponse
// @Security     Bearer
// @Router       /api/materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()

	materials, err := h.uc.List(c.Context(), c.QueryBool("include_archived"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, dto.ToMaterialResponse(m))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener materia prima
// @Tags         materials
// @Produce      json
// @Param        id   path      string  true  "ID de la materia prima"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMaterialResponse(m))
}

// Update godoc
// @Summary      Actualizar materia prima
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "ID de la materia prima"
// @Param        body  body      dto.MaterialRequest  true  "Materia prima"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/materials/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var req dto.MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	m, err := h.uc.Update(c.Context(), c.Params("id"), toMaterialInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMaterialResponse(m))
}

// ReplaceLinks godoc
// @Summary      Reemplazar vínculos de proveedor
// @Description  Sustituye el conjunto completo de vínculos; a lo sumo uno primario
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "ID de la materia prima"
// @Param        body  body      []dto.SupplierLinkRequest  true  "Vínculos"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/materials/{id}/links [put]
func (h *MaterialHandler) ReplaceLinks(c *fiber.Ctx) error {
	var reqs []dto.SupplierLinkRequest
	if err := c.BodyParser(&reqs); err != nil {
		return invalidBody(c)
	}

	inputs := make([]catalog.LinkInput, 0, len(reqs))
	for _, l := range reqs {
		inputs = append(inputs, toLinkInput(l))
	}
	m, err := h.uc.ReplaceLinks(c.Context(), c.Params("id"), inputs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMaterialResponse(m))
}

// Allocation godoc
// @Summary      Previsualizar asignación de consumo
// @Description  Reparte la cantidad entre los proveedores del material según su stock vigente, sin registrar eventos
// @Tags         materials
// @Produce      json
// @Param        id        path      string  true   "ID de la materia prima"
// @Param        quantity  query     number  true   "Cantidad requerida, en la unidad del material"
// @Param        as_of     query     string  false  "Instante de la consulta (RFC3339); por defecto ahora"
// @Success      200  {array}   dto.AllocationLineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/materials/{id}/allocation [get]
func (h *MaterialHandler) Allocation(c *fiber.Ctx) error {
	qty, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return respondError(c, domain.ErrInvalidInput)
		}
	}

	m, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	lines, err := h.resolver.Allocate(c.Context(), m, qty, asOf)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.AllocationLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.ToAllocationLineResponse(l))
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Eliminar materia prima
// @Description  Si aparece en el ledger o en recetas se archiva en lugar de eliminarse
// @Tags         materials
// @Param        id  path  string  true  "ID de la materia prima"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/materials/{id} [delete]
func (h *MaterialHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
