package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/fleetops/payroll-sync/internal/model"
)

type PDFGenerator struct {
	fontName string
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{fontName: "Helvetica"}
}

func (g *PDFGenerator) Render(report model.SubmissionReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Timesheet Submission Report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s",
		formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s",
		report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total entries: %d", report.TotalEntries), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total hours: %.2f", report.TotalHours), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	headers := []string{"Status", "Entries", "Hours"}
	widths := []float64{60, 40, 40}
	drawTableRow(pdf, g.fontName, headers, widths, true)
	for _, group := range report.Groups {
		drawTableRow(pdf, g.fontName, []string{
			string(group.Status),
			fmt.Sprintf("%d", group.EntryCount),
			fmt.Sprintf("%.2f", group.TotalHours),
		}, widths, false)
	}
	pdf.Ln(4)

	detailHeaders := []string{"Date", "Email", "Category", "Hours", "Submitted"}
	detailWidths := []float64{24, 58, 50, 18, 30}
	for _, group := range report.Groups {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Entries: %s", group.Status), "", 1, "L", false, 0, "")
		drawTableRow(pdf, g.fontName, detailHeaders, detailWidths, true)
		for _, row := range group.Rows {
			submitted := "no"
			if row.DeelTimesheetID != nil {
				submitted = "yes"
			}
			drawTableRow(pdf, g.fontName, []string{
				formatDate(row.EntryDate),
				formatString(row.Email),
				row.Category,
				fmt.Sprintf("%.2f", row.Quantity()),
				submitted,
			}, detailWidths, false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 0 && len(cols) == 3 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
