package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/application/catalog"
	"github.com/jhoicas/Costeo-api/internal/application/costing"
	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/units"
)

// RecipeHandler maneja el CRUD de recetas, su árbol de componentes, las
// categorías y la resolución de costo unitario.
type RecipeHandler struct {
	uc *catalog.RecipeUseCase
	// Motores de costeo compartidos; el flag strict de la query decide cuál
	// responde, con defaultStrict como valor por omisión.
	costLenient   *costing.Engine
	costStrict    *costing.Engine
	defaultStrict bool
}

// NewRecipeHandler construye el handler.
func NewRecipeHandler(uc *catalog.RecipeUseCase, costLenient, costStrict *costing.Engine, defaultStrict bool) *RecipeHandler {
	return &RecipeHandler{
		uc:            uc,
		costLenient:   costLenient,
		costStrict:    costStrict,
		defaultStrict: defaultStrict,
	}
}

func toRecipeInput(req dto.RecipeRequest) catalog.RecipeInput {
	roles := make([]entity.Role, 0, len(req.Roles))
	for _, r := range req.Roles {
		roles = append(roles, entity.Role(r))
	}
	return catalog.RecipeInput{
		Name:              req.Name,
		CategoryID:        req.CategoryID,
		Unit:              units.Unit(req.Unit),
		Roles:             roles,
		ProductsPerRecipe: req.ProductsPerRecipe,
		BatchSize:         req.BatchSize,
		SellingPrice:      req.SellingPrice,
		ImageRef:          req.ImageRef,
	}
}

// Create godoc
// @Summary      Crear receta
// @Description  Sin category_id la receta cae en la categoría General
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecipeRequest  true  "Receta"
// @Success      201   {object}  dto.RecipeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/recipes [post]
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	var req dto.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	r, err := h.uc.Create(c.Context(), toRecipeInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRecipeResponse(r))
}

// List godoc
// @Summary      Listar recetas
// @Tags         recipes
// @Produce      json
// @Param        include_archived  query     bool  false  "Incluir archivadas"
// @Param        limit             query     int   false  "Límite"
// @Param        offset            query     int   false  "Offset"
// @Success      200  {array}  dto.RecipeResponse
// @Security     Bearer
// @Router       /api/recipes [get]
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()

	recipes, err := h.uc.List(c.Context(), c.QueryBool("include_archived"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, dto.ToRecipeResponse(r))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener receta
// @Tags         recipes
// @Produce      json
// @Param        id   path      string  true  "ID de la receta"
// @Success      200  {object}  dto.RecipeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/recipes/{id} [get]
func (h *RecipeHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRecipeResponse(r))
}

// Update godoc
// @Summary      Actualizar receta
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID de la receta"
// @Param        body  body      dto.RecipeRequest  true  "Receta"
// @Success      200   {object}  dto.RecipeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/recipes/{id} [put]
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	var req dto.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	r, err := h.uc.Update(c.Context(), c.Params("id"), toRecipeInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRecipeResponse(r))
}

// Components godoc
// @Summary      Obtener componentes de la receta
// @Tags         recipes
// @Produce      json
// @Param        id   path      string  true  "ID de la receta"
// @Success      200  {array}   dto.ComponentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/recipes/{id}/components [get]
func (h *RecipeHandler) Components(c *fiber.Ctx) error {
	comps, err := h.uc.Components(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToComponentResponses(comps))
}

// ReplaceComponents godoc
// @Summary      Reemplazar componentes de la receta
// @Description  Sustituye el árbol completo; un ciclo en el grafo revierte la operación
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID de la receta"
// @Param        body  body      []dto.ComponentRequest  true  "Componentes"
// @Success      200   {array}   dto.ComponentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/recipes/{id}/components [put]
func (h *RecipeHandler) ReplaceComponents(c *fiber.Ctx) error {
	var reqs []dto.ComponentRequest
	if err := c.BodyParser(&reqs); err != nil {
		return invalidBody(c)
	}

	inputs := make([]catalog.ComponentInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, catalog.ComponentInput{
			Kind:     entity.ComponentKind(r.Kind),
			RefID:    r.RefID,
			Quantity: r.Quantity,
			Unit:     units.Unit(r.Unit),
		})
	}
	comps, err := h.uc.ReplaceComponents(c.Context(), c.Params("id"), inputs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToComponentResponses(comps))
}

// UnitCost godoc
// @Summary      Costo unitario de la receta
// @Description  Resuelve el costo recursivamente sobre el árbol de componentes. Con strict=true un componente colgante es error; en modo laxo cuesta cero.
// @Tags         recipes
// @Produce      json
// @Param        id      path      string  true   "ID de la receta"
// @Param        strict  query     bool    false  "Modo estricto"
// @Success      200     {object}  dto.UnitCostResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/recipes/{id}/cost [get]
func (h *RecipeHandler) UnitCost(c *fiber.Ctx) error {
	strict := h.defaultStrict
	if v := c.Query("strict"); v != "" {
		strict = c.QueryBool("strict")
	}
	engine := h.costLenient
	if strict {
		engine = h.costStrict
	}

	cost, err := engine.UnitCost(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UnitCostResponse{
		RecipeID: c.Params("id"),
		UnitCost: cost,
		Strict:   strict,
	})
}

// Remove godoc
// @Summary      Eliminar receta
// @Description  Si tiene producciones o aparece como componente se archiva en lugar de eliminarse
// @Tags         recipes
// @Param        id  path  string  true  "ID de la receta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/recipes/{id} [delete]
func (h *RecipeHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Categories godoc
// @Summary      Listar categorías
// @Tags         categories
// @Produce      json
// @Success      200  {array}  dto.CategoryResponse
// @Security     Bearer
// @Router       /api/categories [get]
func (h *RecipeHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.uc.Categories(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, dto.ToCategoryResponse(cat))
	}
	return c.JSON(out)
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CategoryRequest  true  "Categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/categories [post]
func (h *RecipeHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "name es obligatorio",
		})
	}

	cat, err := h.uc.CreateCategory(c.Context(), req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCategoryResponse(cat))
}
