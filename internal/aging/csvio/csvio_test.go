package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/arfact/internal/aging"
)

func TestLoadInvoices(t *testing.T) {
	input := strings.Join([]string{
		"id,invoice_date,total_amount,centre_id,class_id",
		"INV-001,2025-05-08,100.50,C1,K1",
		"INV-002,2025-06-30,75,C2,K2",
	}, "\n")

	invoices, err := LoadInvoices(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	require.Equal(t, "INV-001", invoices[0].ID)
	require.Equal(t, time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC), invoices[0].InvoiceDate)
	require.Equal(t, 100.50, invoices[0].TotalAmount)
	require.Equal(t, "C2", invoices[1].CentreID)
}

func TestLoadInvoicesMissingColumn(t *testing.T) {
	input := "id,total_amount,centre_id,class_id\nINV-001,100,C1,K1"

	_, err := LoadInvoices(strings.NewReader(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invoices")
	require.Contains(t, err.Error(), `"invoice_date"`)
}

func TestLoadInvoicesBadDate(t *testing.T) {
	input := strings.Join([]string{
		"id,invoice_date,total_amount,centre_id,class_id",
		"INV-001,2025-05-08,100,C1,K1",
		"INV-002,08/05/2025,50,C1,K1",
	}, "\n")

	_, err := LoadInvoices(strings.NewReader(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invoices row 2")
	require.Contains(t, err.Error(), `"invoice_date"`)
}

func TestLoadCreditNotes(t *testing.T) {
	input := strings.Join([]string{
		"id,credit_note_date,total_amount,centre_id,class_id",
		"CN-001,2024-12-20,20,C1,K1",
	}, "\n")

	notes, err := LoadCreditNotes(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "CN-001", notes[0].ID)
	require.Equal(t, 20.0, notes[0].TotalAmount)
}

func TestLoadPayments(t *testing.T) {
	input := strings.Join([]string{
		"document_id,payment_date,amount_paid",
		"INV-001,2025-06-01,40",
		"INV-001,2025-06-15,10.25",
	}, "\n")

	payments, err := LoadPayments(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.Equal(t, "INV-001", payments[1].DocumentID)
	require.Equal(t, 10.25, payments[1].AmountPaid)
}

func TestLoadPaymentsBadAmount(t *testing.T) {
	input := "document_id,payment_date,amount_paid\nINV-001,2025-06-01,abc"

	_, err := LoadPayments(strings.NewReader(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), "payments row 1")
	require.Contains(t, err.Error(), `"amount_paid"`)
}

func TestWriteFactTable(t *testing.T) {
	asAt := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	rows := []aging.AgedDocument{
		{
			CentreID:     "C1",
			ClassID:      "K1",
			DocumentID:   "INV-001",
			DocumentDate: time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC),
			Day60:        60,
			DocumentType: aging.DocTypeInvoice,
			AsAtDate:     asAt,
			Outstanding:  60,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFactTable(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(Columns, ","), lines[0])
	require.Equal(t, "C1,K1,INV-001,2025-05-08,0.00,60.00,0.00,0.00,0.00,0.00,0.00,invoice,2025-07-07", lines[1])
}

func TestLoadWriteRoundTrip(t *testing.T) {
	asAt := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	invoicesCSV := strings.Join([]string{
		"id,invoice_date,total_amount,centre_id,class_id",
		"INV-001,2025-05-08,100,C1,K1",
	}, "\n")
	paymentsCSV := strings.Join([]string{
		"document_id,payment_date,amount_paid",
		"INV-001,2025-06-01,40",
	}, "\n")

	invoices, err := LoadInvoices(strings.NewReader(invoicesCSV))
	require.NoError(t, err)
	payments, err := LoadPayments(strings.NewReader(paymentsCSV))
	require.NoError(t, err)

	rows, _, err := aging.BuildFactTable(invoices, nil, payments, asAt)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var buf bytes.Buffer
	require.NoError(t, WriteFactTable(&buf, rows))
	require.Contains(t, buf.String(), "60.00")
}
