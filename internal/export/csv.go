package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"expense-tracker-go/internal/domain/records"
)

func CSV(prefix, labelHeader string, items []records.Record, at time.Time) (Document, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header(labelHeader)); err != nil {
		return Document{}, fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range items {
		if err := writer.Write(rowValues(record)); err != nil {
			return Document{}, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return Document{}, fmt.Errorf("flush csv: %w", err)
	}

	return Document{
		Filename:    filename(prefix, ".csv", at),
		ContentType: csvContentType,
		Data:        buf.Bytes(),
	}, nil
}
