package reports

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"evalportal/internal/platform/apperr"
	"evalportal/internal/platform/sheets"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", apperr.Validation("format", "must be pdf, csv or xlsx")
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/pdf"
	}
}

// Filename follows report_<kind>_<ddmmyyyy>.<ext>.
func (r Report) Filename(format Format) string {
	return fmt.Sprintf("report_%s_%s.%s", r.Kind, r.GeneratedAt.Format("02012006"), format)
}

const pdfFont = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	fontItalic []byte
)

var tableHeader = []string{"Employee", "Department", "Average score"}

func Render(w io.Writer, format Format, report Report) error {
	switch format {
	case FormatCSV:
		return RenderCSV(w, report)
	case FormatXLSX:
		return RenderXLSX(w, report)
	default:
		return RenderPDF(w, report)
	}
}

// RenderPDF embeds a UTF-8 font so Cyrillic names render as written.
func RenderPDF(w io.Writer, report Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFont, "", fontRegular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", fontBold)
	pdf.AddUTF8FontFromBytes(pdfFont, "I", fontItalic)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, "Performance report", "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFont, "", 12)
	pdf.CellFormat(0, 10, report.Title, "", 1, "C", false, 0, "")
	pdf.Ln(5)
	pdf.Cell(0, 8, "Cycle: "+report.CycleName)
	pdf.Ln(8)
	pdf.Cell(0, 8, "Date: "+report.GeneratedAt.Format("02.01.2006 15:04"))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle mean score: %.2f", report.OverallMean))
	pdf.Ln(12)

	widths := []float64{80, 60, 30}
	pdf.SetFont(pdfFont, "B", 12)
	pdf.SetFillColor(200, 220, 255)
	for i, title := range tableHeader {
		pdf.CellFormat(widths[i], 10, title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont(pdfFont, "", 11)
	for _, row := range report.Rows {
		pdf.CellFormat(widths[0], 8, row.FullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, row.DepartmentName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, fmt.Sprintf("%.2f", row.Average), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.Ln(10)
	pdf.SetFont(pdfFont, "I", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %d employees", len(report.Rows)))
	return pdf.Output(w)
}

func RenderCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(tableHeader); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := writer.Write([]string{row.FullName, row.DepartmentName, fmt.Sprintf("%.2f", row.Average)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func RenderXLSX(w io.Writer, report Report) error {
	rows := make([][]any, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, []any{row.FullName, row.DepartmentName, row.Average})
	}
	return sheets.WriteTable(w, "Report", tableHeader, rows)
}
