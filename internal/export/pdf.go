package export

import (
	"bytes"
	"fmt"
	"time"

	"expense-tracker-go/internal/domain/records"
	"github.com/jung-kurt/gofpdf"
)

var pdfColumnWidths = []float64{30, 70, 50, 30}

// PDF renders the record set as a paginated table with a grand total row.
func PDF(prefix, labelHeader string, items []records.Record, total float64, at time.Time) (Document, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(prefix, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, prefix)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	for col, value := range header(labelHeader) {
		pdf.CellFormat(pdfColumnWidths[col], 8, value, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, record := range items {
		for col, value := range rowValues(record) {
			pdf.CellFormat(pdfColumnWidths[col], 8, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(pdfColumnWidths[0], 8, formatAmount(total), "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumnWidths[1]+pdfColumnWidths[2]+pdfColumnWidths[3], 8, "TOTAL", "1", 0, "L", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("serialize pdf: %w", err)
	}

	return Document{
		Filename:    filename(prefix, ".pdf", at),
		ContentType: pdfContentType,
		Data:        buf.Bytes(),
	}, nil
}
