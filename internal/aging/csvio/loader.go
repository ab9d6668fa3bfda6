// Package csvio reads the three source tables from CSV and writes the
// ageing fact table back out. Schema problems fail the whole load with an
// error naming the table, row and column; there is no partial output.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/odyssey-erp/arfact/internal/aging"
)

// DateLayout is the wire format for all date columns.
const DateLayout = "2006-01-02"

type table struct {
	name    string
	header  map[string]int
	records [][]string
}

func readTable(r io.Reader, name string, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio: read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvio: %s: missing header row", name)
	}

	header := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		header[col] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("csvio: %s: required column %q is missing", name, col)
		}
	}
	return &table{name: name, header: header, records: rows[1:]}, nil
}

func (t *table) field(record []string, row int, col string) (string, error) {
	idx := t.header[col]
	if idx >= len(record) {
		return "", fmt.Errorf("csvio: %s row %d: column %q is missing", t.name, row+1, col)
	}
	return record[idx], nil
}

func (t *table) dateField(record []string, row int, col string) (time.Time, error) {
	raw, err := t.field(record, row, col)
	if err != nil {
		return time.Time{}, err
	}
	value, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("csvio: %s row %d: column %q: cannot parse date %q", t.name, row+1, col, raw)
	}
	return value, nil
}

func (t *table) floatField(record []string, row int, col string) (float64, error) {
	raw, err := t.field(record, row, col)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("csvio: %s row %d: column %q: cannot parse amount %q", t.name, row+1, col, raw)
	}
	return value, nil
}

// LoadInvoices parses the invoices table.
func LoadInvoices(r io.Reader) ([]aging.Invoice, error) {
	t, err := readTable(r, "invoices", []string{"id", "invoice_date", "total_amount", "centre_id", "class_id"})
	if err != nil {
		return nil, err
	}
	invoices := make([]aging.Invoice, 0, len(t.records))
	for i, record := range t.records {
		id, err := t.field(record, i, "id")
		if err != nil {
			return nil, err
		}
		date, err := t.dateField(record, i, "invoice_date")
		if err != nil {
			return nil, err
		}
		total, err := t.floatField(record, i, "total_amount")
		if err != nil {
			return nil, err
		}
		centre, err := t.field(record, i, "centre_id")
		if err != nil {
			return nil, err
		}
		class, err := t.field(record, i, "class_id")
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, aging.Invoice{
			ID:          id,
			InvoiceDate: date,
			TotalAmount: total,
			CentreID:    centre,
			ClassID:     class,
		})
	}
	return invoices, nil
}

// LoadCreditNotes parses the credit notes table.
func LoadCreditNotes(r io.Reader) ([]aging.CreditNote, error) {
	t, err := readTable(r, "credit_notes", []string{"id", "credit_note_date", "total_amount", "centre_id", "class_id"})
	if err != nil {
		return nil, err
	}
	notes := make([]aging.CreditNote, 0, len(t.records))
	for i, record := range t.records {
		id, err := t.field(record, i, "id")
		if err != nil {
			return nil, err
		}
		date, err := t.dateField(record, i, "credit_note_date")
		if err != nil {
			return nil, err
		}
		total, err := t.floatField(record, i, "total_amount")
		if err != nil {
			return nil, err
		}
		centre, err := t.field(record, i, "centre_id")
		if err != nil {
			return nil, err
		}
		class, err := t.field(record, i, "class_id")
		if err != nil {
			return nil, err
		}
		notes = append(notes, aging.CreditNote{
			ID:             id,
			CreditNoteDate: date,
			TotalAmount:    total,
			CentreID:       centre,
			ClassID:        class,
		})
	}
	return notes, nil
}

// LoadPayments parses the payments table.
func LoadPayments(r io.Reader) ([]aging.Payment, error) {
	t, err := readTable(r, "payments", []string{"document_id", "payment_date", "amount_paid"})
	if err != nil {
		return nil, err
	}
	payments := make([]aging.Payment, 0, len(t.records))
	for i, record := range t.records {
		id, err := t.field(record, i, "document_id")
		if err != nil {
			return nil, err
		}
		date, err := t.dateField(record, i, "payment_date")
		if err != nil {
			return nil, err
		}
		amount, err := t.floatField(record, i, "amount_paid")
		if err != nil {
			return nil, err
		}
		payments = append(payments, aging.Payment{
			DocumentID:  id,
			PaymentDate: date,
			AmountPaid:  amount,
		})
	}
	return payments, nil
}
