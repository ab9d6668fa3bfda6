// Command agegen builds the AR ageing fact table from three CSV inputs and
// writes the report CSV, without needing the database or the HTTP service.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/odyssey-erp/arfact/internal/aging"
	"github.com/odyssey-erp/arfact/internal/aging/csvio"
)

func main() {
	var (
		invoicesPath    = flag.String("invoices", "data/invoices.csv", "path to invoices CSV")
		creditNotesPath = flag.String("credit-notes", "data/credit_notes.csv", "path to credit notes CSV")
		paymentsPath    = flag.String("payments", "data/payments.csv", "path to payments CSV")
		asAtRaw         = flag.String("as-at-date", "", "as-at date (YYYY-MM-DD, default today UTC)")
		outputPath      = flag.String("output", "data/output/ageing.csv", "output CSV path")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	asAt := time.Now().UTC().Truncate(24 * time.Hour)
	if *asAtRaw != "" {
		parsed, err := time.Parse(csvio.DateLayout, *asAtRaw)
		if err != nil {
			logger.Error("invalid as-at-date", slog.String("value", *asAtRaw))
			os.Exit(2)
		}
		asAt = parsed
	}

	if err := run(*invoicesPath, *creditNotesPath, *paymentsPath, *outputPath, asAt, logger); err != nil {
		logger.Error("generate ageing report", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(invoicesPath, creditNotesPath, paymentsPath, outputPath string, asAt time.Time, logger *slog.Logger) error {
	invoices, err := loadInvoices(invoicesPath)
	if err != nil {
		return err
	}
	creditNotes, err := loadCreditNotes(creditNotesPath)
	if err != nil {
		return err
	}
	payments, err := loadPayments(paymentsPath)
	if err != nil {
		return err
	}

	rows, stats, err := aging.BuildFactTable(invoices, creditNotes, payments, asAt)
	if err != nil {
		return err
	}
	if stats.OrphanPayments > 0 {
		logger.Warn("payments referenced unknown documents", slog.Int("count", stats.OrphanPayments))
	}
	if stats.FutureDated > 0 {
		logger.Warn("future-dated documents excluded", slog.Int("count", stats.FutureDated))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := csvio.WriteFactTable(out, rows); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("ageing report written",
		slog.String("output", outputPath),
		slog.Int("rows", len(rows)),
		slog.String("as_at", asAt.Format(csvio.DateLayout)))
	return nil
}

func loadInvoices(path string) ([]aging.Invoice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open invoices: %w", err)
	}
	defer func() { _ = f.Close() }()
	return csvio.LoadInvoices(f)
}

func loadCreditNotes(path string) ([]aging.CreditNote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open credit notes: %w", err)
	}
	defer func() { _ = f.Close() }()
	return csvio.LoadCreditNotes(f)
}

func loadPayments(path string) ([]aging.Payment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payments: %w", err)
	}
	defer func() { _ = f.Close() }()
	return csvio.LoadPayments(f)
}
