// Package export renders an owner's full record set as a downloadable CSV,
// spreadsheet, or PDF document. Exports are never paginated.
package export

import (
	"strconv"
	"time"

	"expense-tracker-go/internal/domain/records"
)

type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// filename timestamps the download at generation time, e.g.
// "Expenses2024-01-15 10:30:00.csv".
func filename(prefix, extension string, at time.Time) string {
	return prefix + at.Format("2006-01-02 15:04:05") + extension
}

func header(labelHeader string) []string {
	return []string{"AMOUNT", "DESCRIPTION", labelHeader, "DATE"}
}

func rowValues(record records.Record) []string {
	return []string{
		formatAmount(record.Amount),
		record.Description,
		record.Label,
		record.Date.Format("2006-01-02"),
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
