package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/application/catalog"
	"github.com/jhoicas/Costeo-api/internal/application/dto"
)

// PackagingHandler maneja el CRUD de empaques.
type PackagingHandler struct {
	uc *catalog.PackagingUseCase
}

// NewPackagingHandler construye el handler.
func NewPackagingHandler(uc *catalog.PackagingUseCase) *PackagingHandler {
	return &PackagingHandler{uc: uc}
}

func toPackagingInput(req dto.PackagingRequest) catalog.PackagingInput {
	return catalog.PackagingInput{
		Name:            req.Name,
		QtyPerPackage:   req.QtyPerPackage,
		PricePerPackage: req.PricePerPackage,
	}
}

// Create godoc
// @Summary      Crear empaque
// @Tags         packagings
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PackagingRequest  true  "Empaque"
// @Success      201   {object}  dto.PackagingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/packagings [post]
func (h *PackagingHandler) Create(c *fiber.Ctx) error {
	var req dto.PackagingRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	p, err := h.uc.Create(c.Context(), toPackagingInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToPackagingResponse(p))
}

// List godoc
// @Summary      Listar empaques
// @Tags         packagings
// @Produce      json
// @Param        include_archived  query     bool  false  "Incluir archivados"
// @Param        limit             query     int   false  "Límite"
// @Param        offset            query     int   false  "Offset"
// @Success      200  {array}  dto.PackagingResponse
// @Security     Bearer
// @Router       /api/packagings [get]
func (h *PackagingHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()

	packagings, err := h.uc.List(c.Context(), c.QueryBool("include_archived"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PackagingResponse, 0, len(packagings))
	for _, p := range packagings {
		out = append(out, dto.ToPackagingResponse(p))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener empaque
// @Tags         packagings
// @Produce      json
// @Param        id   path      string  true  "ID del empaque"
// @Success      200  {object}  dto.PackagingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/packagings/{id} [get]
func (h *PackagingHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPackagingResponse(p))
}

// Update godoc
// @Summary      Actualizar empaque
// @Tags         packagings
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "ID del empaque"
// @Param        body  body      dto.PackagingRequest  true  "Empaque"
// @Success      200   {object}  dto.PackagingResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/packagings/{id} [put]
func (h *PackagingHandler) Update(c *fiber.Ctx) error {
	var req dto.PackagingRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	p, err := h.uc.Update(c.Context(), c.Params("id"), toPackagingInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPackagingResponse(p))
}

// Remove godoc
// @Summary      Eliminar empaque
// @Description  Si aparece en el ledger o en recetas se archiva en lugar de eliminarse
// @Tags         packagings
// @Param        id  path  string  true  "ID del empaque"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/packagings/{id} [delete]
func (h *PackagingHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
