package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/application/reporting"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// ReportHandler expone los reportes de producción y auditorías.
type ReportHandler struct {
	uc *reporting.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Weekly godoc
// @Summary      Reporte semanal de producción
// @Description  Agrega la producción de la semana calendario (lunes a domingo) que contiene a anchor; sin anchor usa la semana actual
// @Tags         reports
// @Produce      json
// @Param        anchor  query     string  false  "Fecha dentro de la semana (RFC3339)"
// @Success      200     {object}  reporting.ProductionReport
// @Security     Bearer
// @Router       /api/reports/weekly [get]
func (h *ReportHandler) Weekly(c *fiber.Ctx) error {
	anchor, ok := parseAnchor(c)
	if !ok {
		return respondError(c, domain.ErrInvalidInput)
	}

	report, err := h.uc.WeeklyReport(c.Context(), anchor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// WeeklyPDF godoc
// @Summary      Reporte semanal en PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        anchor  query  string  false  "Fecha dentro de la semana (RFC3339)"
// @Success      200  {file}  binary
// @Security     Bearer
// @Router       /api/reports/weekly/pdf [get]
func (h *ReportHandler) WeeklyPDF(c *fiber.Ctx) error {
	anchor, ok := parseAnchor(c)
	if !ok {
		return respondError(c, domain.ErrInvalidInput)
	}

	data, err := h.uc.WeeklyReportPDF(c.Context(), anchor)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reporte-semanal.pdf"`)
	return c.Send(data)
}

// ProductionBetween godoc
// @Summary      Reporte de producción por rango
// @Tags         reports
// @Produce      json
// @Param        from  query     string  true  "Desde (RFC3339)"
// @Param        to    query     string  true  "Hasta (RFC3339)"
// @Success      200   {object}  reporting.ProductionReport
// @Failure      400   {object}  dto.ErrorResponse
// @Security     Bearer
// @Router       /api/reports/production [get]
func (h *ReportHandler) ProductionBetween(c *fiber.Ctx) error {
	var dates dto.DateRange
	if err := c.QueryParser(&dates); err != nil {
		return invalidBody(c)
	}
	if dates.From == nil || dates.To == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "from y to son obligatorios",
		})
	}

	report, err := h.uc.ProductionBetween(c.Context(), *dates.From, *dates.To)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Audits godoc
// @Summary      Listar auditorías de conteo
// @Tags         reports
// @Produce      json
// @Param        from    query     string  false  "Desde (RFC3339)"
// @Param        to      query     string  false  "Hasta (RFC3339)"
// @Param        limit   query     int     false  "Límite"
// @Param        offset  query     int     false  "Offset"
// @Success      200  {array}  dto.StockAuditResponse
// @Security     Bearer
// @Router       /api/reports/audits [get]
func (h *ReportHandler) Audits(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()
	var dates dto.DateRange
	if err := c.QueryParser(&dates); err != nil {
		return invalidBody(c)
	}

	audits, err := h.uc.AuditsBetween(c.Context(), dates.From, dates.To, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAuditResponses(audits))
}

// AuditsForEntity godoc
// @Summary      Historial de auditorías de una entidad
// @Tags         reports
// @Produce      json
// @Param        kind    path      string  true   "raw_material | packaging | recipe"
// @Param        id      path      string  true   "ID de la entidad"
// @Param        limit   query     int     false  "Límite"
// @Param        offset  query     int     false  "Offset"
// @Success      200  {array}  dto.StockAuditResponse
// @Security     Bearer
// @Router       /api/stock/{kind}/{id}/audits [get]
func (h *ReportHandler) AuditsForEntity(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()

	audits, err := h.uc.AuditsForEntity(c.Context(),
		entity.EntityKind(c.Params("kind")), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAuditResponses(audits))
}

func toAuditResponses(audits []*entity.StockAudit) []dto.StockAuditResponse {
	out := make([]dto.StockAuditResponse, 0, len(audits))
	for _, a := range audits {
		out = append(out, dto.ToStockAuditResponse(a))
	}
	return out
}

// parseAnchor lee el query param anchor; ok es false si no parsea como RFC3339.
func parseAnchor(c *fiber.Ctx) (time.Time, bool) {
	raw := c.Query("anchor")
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
