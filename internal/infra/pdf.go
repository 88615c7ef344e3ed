package infra

// Monthly statement of a GastoComun using go-pdf/fpdf.
// One A4 page with:
//   - Condominium header and resident / unit
//   - Period, issue and due dates, estado
//   - Component table (base, mantención, servicios, multas)
//   - Bold total
//   - Adjustment notes, newest last
//
// The output file is saved to storagePath/gasto_{residente}_{anio}_{mes}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"casitas/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerarEstadoCuentaPDF writes the statement of g for resident r.
// storagePath is created if needed. Returns the path of the generated file.
func GenerarEstadoCuentaPDF(g *model.GastoComun, r *model.Residente, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("gasto_%s_%04d_%02d.pdf", g.ResidenteID, g.Anio, g.Mes)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Casitas Teto", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Estado de cuenta gasto común %02d/%d", g.Mes, g.Anio)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Resident / dates ─────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	linea := func(label, valor string) {
		pdf.CellFormat(contentW*0.35, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.65, 5, tr(valor), "", 1, "L", false, 0, "")
	}
	linea("Residente:", r.Nombre+" "+r.Apellido)
	linea("Vivienda:", r.ViviendaNumero)
	linea("Emisión:", g.FechaEmision.Format("02/01/2006"))
	linea("Vencimiento:", g.FechaVencimiento.Format("02/01/2006"))
	linea("Estado:", g.Estado)
	pdf.Ln(3)

	// ── Components ───────────────────────────────────────────────────────────
	col1 := contentW * 0.7
	col2 := contentW * 0.3

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Concepto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Monto", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	fila := func(concepto string, monto decimal.Decimal) {
		pdf.CellFormat(col1, 6, tr(concepto), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "$"+monto.StringFixed(0), "", 1, "R", false, 0, "")
	}
	fila("Gasto común base", g.MontoBase)
	fila("Cuota de mantención", g.CuotaMantencion)
	fila("Servicios y reservas", g.Servicios)
	fila("Multas", g.Multas)

	pdf.Ln(1)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1, 7, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "$"+g.MontoTotal.StringFixed(0), "", 1, "R", false, 0, "")

	// ── Notes ────────────────────────────────────────────────────────────────
	if len(g.Observaciones) > 0 {
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Movimientos", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, o := range g.Observaciones {
			desc := o.Descripcion
			if len(desc) > 70 {
				desc = desc[:69] + "..."
			}
			pdf.CellFormat(contentW*0.18, 5, o.Fecha.Format("02/01/2006"), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.62, 5, tr(desc), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.20, 5, "$"+o.Monto.StringFixed(0), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("Documento generado automáticamente. No requiere firma."), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
