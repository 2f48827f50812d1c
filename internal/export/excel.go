package export

import (
	"fmt"
	"time"

	"expense-tracker-go/internal/domain/records"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

func Excel(prefix, labelHeader string, items []records.Record, at time.Time) (Document, error) {
	file := excelize.NewFile()
	defer file.Close()

	boldStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return Document{}, fmt.Errorf("create header style: %w", err)
	}

	for col, value := range header(labelHeader) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return Document{}, err
		}
		if err := file.SetCellValue(sheetName, cell, value); err != nil {
			return Document{}, fmt.Errorf("write header cell: %w", err)
		}
	}
	if err := file.SetCellStyle(sheetName, "A1", "D1", boldStyle); err != nil {
		return Document{}, fmt.Errorf("style header: %w", err)
	}

	for rowIndex, record := range items {
		values := []interface{}{
			record.Amount,
			record.Description,
			record.Label,
			record.Date.Format("2006-01-02"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+2)
			if err != nil {
				return Document{}, err
			}
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return Document{}, fmt.Errorf("write row cell: %w", err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return Document{}, fmt.Errorf("serialize workbook: %w", err)
	}

	return Document{
		Filename:    filename(prefix, ".xlsx", at),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}
