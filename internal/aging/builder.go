// Package aging builds the accounts-receivable ageing fact table: one row
// per outstanding document, with the outstanding amount placed in exactly
// one age bucket column relative to an as-at date.
package aging

import (
	"fmt"
	"sort"
	"time"
)

const hoursPerDay = 24

// BuildFactTable unifies invoices and credit notes into one document set,
// nets payments against each document, drops settled balances, and pivots
// the bucket assignment into wide per-bucket columns.
//
// The computation is a pure function of its inputs: nothing is mutated and
// no I/O happens here. Rows come back sorted by document id so runs are
// deterministic. Skipped records (orphan payments, future-dated documents)
// are reported through Stats rather than failing the run.
func BuildFactTable(invoices []Invoice, creditNotes []CreditNote, payments []Payment, asAt time.Time) ([]AgedDocument, Stats, error) {
	var stats Stats
	if asAt.IsZero() {
		return nil, stats, fmt.Errorf("aging: as-at date is required")
	}

	docs, err := unifyDocuments(invoices, creditNotes)
	if err != nil {
		return nil, stats, err
	}

	paid, err := sumPaymentsByDocument(payments)
	if err != nil {
		return nil, stats, err
	}

	known := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		known[doc.DocumentID] = struct{}{}
	}
	for _, p := range payments {
		if _, ok := known[p.DocumentID]; !ok {
			stats.OrphanPayments++
		}
	}

	rows := make([]AgedDocument, 0, len(docs))
	for _, doc := range docs {
		// Explicit zero-fill left join: documents with no payment group
		// keep an amount paid of zero.
		outstanding := doc.TotalAmount - paid[doc.DocumentID]
		if outstanding <= 0 {
			stats.SettledOrOverpaid++
			continue
		}

		age := ageInDays(doc.DocumentDate, asAt)
		bucket, ok := AssignBucket(age)
		if !ok {
			stats.FutureDated++
			continue
		}

		row := AgedDocument{
			CentreID:     doc.CentreID,
			ClassID:      doc.ClassID,
			DocumentID:   doc.DocumentID,
			DocumentDate: doc.DocumentDate,
			DocumentType: doc.DocumentType,
			AsAtDate:     asAt,
			Outstanding:  outstanding,
		}
		setBucketAmount(&row, bucket, outstanding)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].DocumentID < rows[j].DocumentID })
	return rows, stats, nil
}

func unifyDocuments(invoices []Invoice, creditNotes []CreditNote) ([]Document, error) {
	docs := make([]Document, 0, len(invoices)+len(creditNotes))
	for i, inv := range invoices {
		if inv.ID == "" {
			return nil, fmt.Errorf("aging: invoices row %d: id is empty", i)
		}
		if inv.InvoiceDate.IsZero() {
			return nil, fmt.Errorf("aging: invoices row %d (%s): invoice_date is missing", i, inv.ID)
		}
		docs = append(docs, Document{
			DocumentID:   inv.ID,
			DocumentDate: inv.InvoiceDate,
			DocumentType: DocTypeInvoice,
			CentreID:     inv.CentreID,
			ClassID:      inv.ClassID,
			TotalAmount:  inv.TotalAmount,
		})
	}
	for i, cn := range creditNotes {
		if cn.ID == "" {
			return nil, fmt.Errorf("aging: credit_notes row %d: id is empty", i)
		}
		if cn.CreditNoteDate.IsZero() {
			return nil, fmt.Errorf("aging: credit_notes row %d (%s): credit_note_date is missing", i, cn.ID)
		}
		docs = append(docs, Document{
			DocumentID:   cn.ID,
			DocumentDate: cn.CreditNoteDate,
			DocumentType: DocTypeCreditNote,
			CentreID:     cn.CentreID,
			ClassID:      cn.ClassID,
			TotalAmount:  cn.TotalAmount,
		})
	}
	return docs, nil
}

func sumPaymentsByDocument(payments []Payment) (map[string]float64, error) {
	sums := make(map[string]float64, len(payments))
	for i, p := range payments {
		if p.DocumentID == "" {
			return nil, fmt.Errorf("aging: payments row %d: document_id is empty", i)
		}
		if p.PaymentDate.IsZero() {
			return nil, fmt.Errorf("aging: payments row %d (%s): payment_date is missing", i, p.DocumentID)
		}
		sums[p.DocumentID] += p.AmountPaid
	}
	return sums, nil
}

func ageInDays(documentDate, asAt time.Time) int {
	d := truncateToDay(asAt).Sub(truncateToDay(documentDate))
	return int(d.Hours() / hoursPerDay)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func setBucketAmount(row *AgedDocument, bucket string, amount float64) {
	switch bucket {
	case BucketDay30:
		row.Day30 = amount
	case BucketDay60:
		row.Day60 = amount
	case BucketDay90:
		row.Day90 = amount
	case BucketDay120:
		row.Day120 = amount
	case BucketDay150:
		row.Day150 = amount
	case BucketDay180:
		row.Day180 = amount
	case BucketDay180AndAbove:
		row.Day180AndAbove = amount
	}
}

// BucketAmounts returns the seven bucket columns in report order.
func (d AgedDocument) BucketAmounts() []float64 {
	return []float64{d.Day30, d.Day60, d.Day90, d.Day120, d.Day150, d.Day180, d.Day180AndAbove}
}
