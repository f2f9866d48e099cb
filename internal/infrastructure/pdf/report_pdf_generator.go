// Package pdf implementa la generación del Reporte Semanal de Producción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + período  │  Fecha de generación           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Receta | Lotes | Unid. | Costo | C/U | Ingreso est. │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Costo total / Ingreso estimado / Margen estimado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: nota metodológica (costos congelados al producir)  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Costeo-api/internal/application/reporting"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// es formatea números con separadores de miles en español.
var es = message.NewPrinter(language.Spanish)

var _ reporting.ReportPDFGenerator = (*ReportPDFGenerator)(nil)

// ReportPDFGenerator implementa reporting.ReportPDFGenerator usando Maroto v2.
type ReportPDFGenerator struct{}

// NewReportPDFGenerator construye el generador.
func NewReportPDFGenerator() *ReportPDFGenerator { return &ReportPDFGenerator{} }

// GenerateReportPDF genera el PDF del reporte y devuelve sus bytes.
func (g *ReportPDFGenerator) GenerateReportPDF(_ context.Context, report *reporting.ProductionReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Producción", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRollupRows(report.Rollups) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + período (izq) y fecha de generación (der).
func headerRow(report *reporting.ProductionReport) core.Row {
	periodo := fmt.Sprintf("%s – %s",
		report.From.Format("02/01/2006"),
		report.To.Format("02/01/2006"),
	)
	return row.New(18).Add(
		col.New(8).Add(
			text.New("REPORTE DE PRODUCCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(report.Label+"   |   "+periodo, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de recetas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Receta", 3, align.Left),
		h("Lotes", 1, align.Right),
		h("Unid.", 1, align.Right),
		h("Costo", 2, align.Right),
		h("Costo/U", 2, align.Right),
		h("Ingreso est.", 2, align.Right),
		h("Margen est.", 1, align.Right),
	)
}

// tableRollupRows: una fila por receta producida en el período.
func tableRollupRows(rollups []reporting.RecipeRollup) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	result := make([]core.Row, 0, len(rollups))
	for _, r := range rollups {
		revenue, margin := "—", "—"
		if r.EstRevenue != nil {
			revenue = "$" + formatMoney(*r.EstRevenue)
		}
		if r.EstMargin != nil {
			margin = "$" + formatMoney(*r.EstMargin)
		}
		result = append(result, row.New(7).Add(
			cell(r.RecipeName, 3, align.Left),
			cell(r.Batches.StringFixed(1), 1, align.Right),
			cell(r.Units.StringFixed(0), 1, align.Right),
			cell("$"+formatMoney(r.TotalCost), 2, align.Right),
			cell("$"+formatMoney(r.CostPerUnit), 2, align.Right),
			cell(revenue, 2, align.Right),
			cell(margin, 1, align.Right),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(report *reporting.ProductionReport) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top,
		})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grandLabel := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: top,
		})
	}
	grandValue := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: top,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Costo total:", 2),
			label("Ingreso estimado:", 9),
			grandLabel("MARGEN ESTIMADO:", 17),
		),
		col.New(3).Add(
			value("$"+formatMoney(report.TotalCost), 2),
			value("$"+formatMoney(report.EstRevenue), 9),
			grandValue("$"+formatMoney(report.EstMargin), 17),
		),
		col.New(3),
	)
}

// footerRow: nota metodológica.
func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Los costos corresponden al desglose congelado de cada producción "+
				"(precios de proveedor vigentes al momento de producir). "+
				"El ingreso estimado asume la venta de todas las unidades al precio de lista.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney formatea el monto con separadores de miles en español.
// Ej: 25000 → "25.000", 1234567.5 → "1.234.568"
func formatMoney(d decimal.Decimal) string {
	return es.Sprintf("%.0f", d.InexactFloat64())
}
