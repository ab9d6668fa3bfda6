package report

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/arfact/internal/aging"
)

type mockRepo struct {
	invoices     []aging.Invoice
	creditNotes  []aging.CreditNote
	payments     []aging.Payment
	invoiceCalls int
}

func (m *mockRepo) ListInvoices(ctx context.Context) ([]aging.Invoice, error) {
	m.invoiceCalls++
	return m.invoices, nil
}

func (m *mockRepo) ListCreditNotes(ctx context.Context) ([]aging.CreditNote, error) {
	return m.creditNotes, nil
}

func (m *mockRepo) ListPayments(ctx context.Context) ([]aging.Payment, error) {
	return m.payments, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache, nil)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestFactTableComputesAndCaches(t *testing.T) {
	asAt := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	repo := &mockRepo{
		invoices: []aging.Invoice{
			{ID: "INV-001", InvoiceDate: asAt.AddDate(0, 0, -60), TotalAmount: 100, CentreID: "C1", ClassID: "K1"},
		},
		payments: []aging.Payment{
			{DocumentID: "INV-001", PaymentDate: asAt.AddDate(0, 0, -10), AmountPaid: 40},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	rows, err := svc.FactTable(ctx, Filter{AsAt: asAt})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row got %d", len(rows))
	}
	if rows[0].Outstanding != 60 || rows[0].Day60 != 60 {
		t.Fatalf("unexpected row %#v", rows[0])
	}
	if repo.invoiceCalls != 1 {
		t.Fatalf("expected 1 repo call, got %d", repo.invoiceCalls)
	}

	// Second call should hit cache.
	if _, err := svc.FactTable(ctx, Filter{AsAt: asAt}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.invoiceCalls != 1 {
		t.Fatalf("expected cached result, repo called %d times", repo.invoiceCalls)
	}

	// Invalidation should trigger recompute.
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	repo.invoices[0].TotalAmount = 200
	rows, err = svc.FactTable(ctx, Filter{AsAt: asAt})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Outstanding != 160 {
		t.Fatalf("expected refreshed outstanding 160 got %.2f", rows[0].Outstanding)
	}
	if repo.invoiceCalls != 2 {
		t.Fatalf("expected repo to refresh, calls %d", repo.invoiceCalls)
	}
}

func TestFactTableDefaultsAsAt(t *testing.T) {
	repo := &mockRepo{
		invoices: []aging.Invoice{
			{ID: "INV-002", InvoiceDate: time.Now().UTC().AddDate(0, 0, -5), TotalAmount: 50},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	rows, err := svc.FactTable(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row got %d", len(rows))
	}
	if rows[0].AsAtDate.IsZero() {
		t.Fatalf("expected as-at date to be stamped")
	}
	if rows[0].Day30 != 50 {
		t.Fatalf("expected day_30 bucket got %#v", rows[0])
	}
}

func TestFactTableWithoutCache(t *testing.T) {
	asAt := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	repo := &mockRepo{
		creditNotes: []aging.CreditNote{
			{ID: "CN-001", CreditNoteDate: asAt.AddDate(0, 0, -200), TotalAmount: 20},
		},
	}
	svc := NewService(repo, nil, nil)

	rows, err := svc.FactTable(context.Background(), Filter{AsAt: asAt})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Day180AndAbove != 20 {
		t.Fatalf("unexpected rows %#v", rows)
	}
}

func TestPreviewDoesNotCache(t *testing.T) {
	asAt := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	svc, cleanup := newTestService(t, &mockRepo{})
	defer cleanup()

	rows, err := svc.Preview(context.Background(),
		[]aging.Invoice{{ID: "INV-003", InvoiceDate: asAt.AddDate(0, 0, -10), TotalAmount: 80}},
		nil, nil, asAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Day30 != 80 {
		t.Fatalf("unexpected rows %#v", rows)
	}
}
