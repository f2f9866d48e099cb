// Package reporting contiene los casos de uso de reportes de negocio: el
// resumen semanal de producción por receta y el listado de auditorías de
// stock, más la exportación a PDF.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// RecipeRollup resumen de producción de una receta en el período.
type RecipeRollup struct {
	RecipeID    string          `json:"recipe_id"`
	RecipeName  string          `json:"recipe_name"`
	Batches     decimal.Decimal `json:"batches"`
	Units       decimal.Decimal `json:"units"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	// EstRevenue/EstMargin solo para recetas vendibles con precio cargado.
	EstRevenue *decimal.Decimal `json:"est_revenue,omitempty"`
	EstMargin  *decimal.Decimal `json:"est_margin,omitempty"`
}

// ProductionReport reporte de producción de un período.
type ProductionReport struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Label      string          `json:"label"`
	Rollups    []RecipeRollup  `json:"rollups"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	EstRevenue decimal.Decimal `json:"est_revenue"`
	EstMargin  decimal.Decimal `json:"est_margin"`
}

// ReportPDFGenerator puerto de exportación del reporte de producción.
type ReportPDFGenerator interface {
	GenerateReportPDF(ctx context.Context, report *ProductionReport) ([]byte, error)
}

// ReportUseCase genera los reportes sobre los registros de producción y las
// auditorías. Solo lecturas.
type ReportUseCase struct {
	productions repository.ProductionLogRepository
	recipes     repository.RecipeRepository
	audits      repository.StockAuditRepository
	pdf         ReportPDFGenerator
	log         *logger.Logger
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	productions repository.ProductionLogRepository,
	recipes repository.RecipeRepository,
	audits repository.StockAuditRepository,
	pdf ReportPDFGenerator,
	log *logger.Logger,
) *ReportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{productions: productions, recipes: recipes, audits: audits, pdf: pdf, log: log}
}

// WeeklyReport reporte de la semana calendario (lunes a domingo) que contiene
// a anchor.
func (uc *ReportUseCase) WeeklyReport(ctx context.Context, anchor time.Time) (*ProductionReport, error) {
	if anchor.IsZero() {
		anchor = time.Now()
	}
	from, to := weekBounds(anchor)
	report, err := uc.ProductionBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report.Label = fmt.Sprintf("Semana del %s", from.Format("02/01/2006"))
	return report, nil
}

// ProductionBetween agrega la producción del rango [from, to] por receta:
// lotes, unidades, costo total y, para recetas vendibles con precio, ingreso
// y margen estimados (unidades * precio de venta).
func (uc *ReportUseCase) ProductionBetween(ctx context.Context, from, to time.Time) (*ProductionReport, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	logs, err := uc.productions.ListBetween(ctx, &from, &to, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("reporte: producciones del período: %w", err)
	}

	type acc struct {
		batches decimal.Decimal
		cost    decimal.Decimal
	}
	byRecipe := map[string]*acc{}
	for _, pl := range logs {
		a, ok := byRecipe[pl.RecipeID]
		if !ok {
			a = &acc{}
			byRecipe[pl.RecipeID] = a
		}
		a.batches = a.batches.Add(pl.QuantityProduced)
		a.cost = a.cost.Add(pl.TotalCost)
	}

	report := &ProductionReport{From: from, To: to, Label: monthLabel(from)}
	for recipeID, a := range byRecipe {
		recipe, err := uc.recipes.GetByID(ctx, recipeID)
		if err != nil {
			return nil, err
		}
		r := RecipeRollup{
			RecipeID:  recipeID,
			Batches:   a.batches,
			TotalCost: a.cost.Round(2),
		}
		if recipe != nil {
			r.RecipeName = recipe.Name
			r.Units = a.batches.Mul(recipe.Yield())
			if r.Units.GreaterThan(decimal.Zero) {
				r.CostPerUnit = a.cost.Div(r.Units).Round(2)
			}
			if recipe.Roles.Has(entity.RoleSellable) && recipe.SellingPrice != nil {
				rev := r.Units.Mul(*recipe.SellingPrice).Round(2)
				margin := rev.Sub(r.TotalCost).Round(2)
				r.EstRevenue = &rev
				r.EstMargin = &margin
				report.EstRevenue = report.EstRevenue.Add(rev)
				report.EstMargin = report.EstMargin.Add(margin)
			}
		} else {
			// Receta borrada con historial conservado: se reporta por id.
			r.RecipeName = recipeID
		}
		report.TotalCost = report.TotalCost.Add(r.TotalCost)
		report.Rollups = append(report.Rollups, r)
	}

	sort.Slice(report.Rollups, func(i, j int) bool {
		return report.Rollups[i].TotalCost.GreaterThan(report.Rollups[j].TotalCost)
	})
	return report, nil
}

// AuditsBetween lista las auditorías de conteo del rango, paginadas.
func (uc *ReportUseCase) AuditsBetween(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.StockAudit, error) {
	return uc.audits.ListBetween(ctx, from, to, limit, offset)
}

// AuditsForEntity historial de auditorías de una entidad.
func (uc *ReportUseCase) AuditsForEntity(ctx context.Context, kind entity.EntityKind, entityID string, limit, offset int) ([]*entity.StockAudit, error) {
	if !entity.ValidEntityKind(kind) || entityID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.audits.ListByEntity(ctx, kind, entityID, limit, offset)
}

// WeeklyReportPDF genera el PDF del reporte semanal.
func (uc *ReportUseCase) WeeklyReportPDF(ctx context.Context, anchor time.Time) ([]byte, error) {
	report, err := uc.WeeklyReport(ctx, anchor)
	if err != nil {
		return nil, err
	}
	data, err := uc.pdf.GenerateReportPDF(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("reporte: generar PDF: %w", err)
	}
	uc.log.Info().
		Time("from", report.From).
		Time("to", report.To).
		Int("recetas", len(report.Rollups)).
		Msg("PDF de reporte semanal generado")
	return data, nil
}

// weekBounds lunes 00:00 y domingo 23:59:59.999 de la semana de t.
func weekBounds(t time.Time) (time.Time, time.Time) {
	offset := (int(t.Weekday()) + 6) % 7 // lunes = 0
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	from := day.AddDate(0, 0, -offset)
	to := from.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return from, to
}

// monthLabel etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
