package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/arfact/internal/aging"
)

// Columns is the exact output column order of the fact table.
var Columns = []string{
	"centre_id",
	"class_id",
	"document_id",
	"document_date",
	"day_30",
	"day_60",
	"day_90",
	"day_120",
	"day_150",
	"day_180",
	"day_180_and_above",
	"document_type",
	"as_at_date",
}

// WriteFactTable serialises the fact table rows as CSV in report column order.
func WriteFactTable(w io.Writer, rows []aging.AgedDocument) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.CentreID,
			row.ClassID,
			row.DocumentID,
			row.DocumentDate.Format(DateLayout),
			formatFloat(row.Day30),
			formatFloat(row.Day60),
			formatFloat(row.Day90),
			formatFloat(row.Day120),
			formatFloat(row.Day150),
			formatFloat(row.Day180),
			formatFloat(row.Day180AndAbove),
			string(row.DocumentType),
			row.AsAtDate.Format(DateLayout),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
