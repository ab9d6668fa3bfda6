package aging

import (
	"time"
)

// DocumentType distinguishes the two billable record types that get aged.
type DocumentType string

const (
	DocTypeInvoice    DocumentType = "invoice"
	DocTypeCreditNote DocumentType = "credit_note"
)

// Invoice is an outstanding billing record as loaded from its source table.
type Invoice struct {
	ID          string
	InvoiceDate time.Time
	TotalAmount float64
	CentreID    string
	ClassID     string
}

// CreditNote mirrors Invoice with its own document date column.
type CreditNote struct {
	ID             string
	CreditNoteDate time.Time
	TotalAmount    float64
	CentreID       string
	ClassID        string
}

// Payment records money applied against a document. Multiple payments may
// reference the same document id.
type Payment struct {
	DocumentID  string
	PaymentDate time.Time
	AmountPaid  float64
}

// Document is the unified view of an invoice or credit note. Document ids
// are assumed globally unique across both sources; colliding id spaces are
// not defended against.
type Document struct {
	DocumentID   string
	DocumentDate time.Time
	DocumentType DocumentType
	CentreID     string
	ClassID      string
	TotalAmount  float64
}

// AgedDocument is one output row of the fact table. Exactly one bucket
// column is non-zero and equals Outstanding.
type AgedDocument struct {
	CentreID       string       `json:"centre_id"`
	ClassID        string       `json:"class_id"`
	DocumentID     string       `json:"document_id"`
	DocumentDate   time.Time    `json:"document_date"`
	Day30          float64      `json:"day_30"`
	Day60          float64      `json:"day_60"`
	Day90          float64      `json:"day_90"`
	Day120         float64      `json:"day_120"`
	Day150         float64      `json:"day_150"`
	Day180         float64      `json:"day_180"`
	Day180AndAbove float64      `json:"day_180_and_above"`
	DocumentType   DocumentType `json:"document_type"`
	AsAtDate       time.Time    `json:"as_at_date"`
	Outstanding    float64      `json:"outstanding_amount"`
}

// Stats reports what the builder skipped without failing the run.
type Stats struct {
	// OrphanPayments counts payments referencing a document id with no
	// matching document. They contribute to no outstanding balance.
	OrphanPayments int
	// FutureDated counts documents dated after the as-at date. They have
	// no bucket and are excluded from the output.
	FutureDated int
	// SettledOrOverpaid counts documents filtered out with outstanding <= 0.
	SettledOrOverpaid int
}
