package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/arfact/internal/aging"
)

// PostgresRepository reads the receivables source tables.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListInvoices returns all invoice records.
func (r *PostgresRepository) ListInvoices(ctx context.Context) ([]aging.Invoice, error) {
	const query = `
		SELECT id, invoice_date, total_amount, centre_id, class_id
		FROM ar_invoices
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report: list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []aging.Invoice
	for rows.Next() {
		var inv aging.Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceDate, &inv.TotalAmount, &inv.CentreID, &inv.ClassID); err != nil {
			return nil, fmt.Errorf("report: scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: list invoices: %w", err)
	}
	return invoices, nil
}

// ListCreditNotes returns all credit note records.
func (r *PostgresRepository) ListCreditNotes(ctx context.Context) ([]aging.CreditNote, error) {
	const query = `
		SELECT id, credit_note_date, total_amount, centre_id, class_id
		FROM ar_credit_notes
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report: list credit notes: %w", err)
	}
	defer rows.Close()

	var notes []aging.CreditNote
	for rows.Next() {
		var cn aging.CreditNote
		if err := rows.Scan(&cn.ID, &cn.CreditNoteDate, &cn.TotalAmount, &cn.CentreID, &cn.ClassID); err != nil {
			return nil, fmt.Errorf("report: scan credit note: %w", err)
		}
		notes = append(notes, cn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: list credit notes: %w", err)
	}
	return notes, nil
}

// ListPayments returns all payment records.
func (r *PostgresRepository) ListPayments(ctx context.Context) ([]aging.Payment, error) {
	const query = `
		SELECT document_id, payment_date, amount_paid
		FROM ar_payments
		ORDER BY document_id, payment_date`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report: list payments: %w", err)
	}
	defer rows.Close()

	var payments []aging.Payment
	for rows.Next() {
		var p aging.Payment
		if err := rows.Scan(&p.DocumentID, &p.PaymentDate, &p.AmountPaid); err != nil {
			return nil, fmt.Errorf("report: scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: list payments: %w", err)
	}
	return payments, nil
}
