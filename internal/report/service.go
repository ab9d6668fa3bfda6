// Package report exposes the AR ageing fact table as a cached service over
// the stored receivables tables.
package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/arfact/internal/aging"
)

// Repository defines data access for the three source tables.
type Repository interface {
	ListInvoices(ctx context.Context) ([]aging.Invoice, error)
	ListCreditNotes(ctx context.Context) ([]aging.CreditNote, error)
	ListPayments(ctx context.Context) ([]aging.Payment, error)
}

// Filter scopes a fact table computation.
type Filter struct {
	AsAt time.Time
}

// Service coordinates source loading, the fact table builder and the cache.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// FactTable returns the ageing fact table for the given as-at date,
// computing and caching it when absent. A zero as-at date defaults to
// today in UTC.
func (s *Service) FactTable(ctx context.Context, filter Filter) ([]aging.AgedDocument, error) {
	if filter.AsAt.IsZero() {
		filter.AsAt = time.Now().UTC().Truncate(24 * time.Hour)
	}

	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildFromRepo(ctx, filter.AsAt)
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]aging.AgedDocument), nil
	}

	key, err := s.cache.BuildKey(ctx, keyAgeing(filter.AsAt)...)
	if err != nil {
		return nil, err
	}
	var rows []aging.AgedDocument
	if err := s.cache.FetchJSON(ctx, key, &rows, loader); err != nil {
		return nil, err
	}
	return rows, nil
}

// Preview runs the builder over caller-supplied tables without touching
// storage or the cache.
func (s *Service) Preview(ctx context.Context, invoices []aging.Invoice, creditNotes []aging.CreditNote, payments []aging.Payment, asAt time.Time) ([]aging.AgedDocument, error) {
	rows, stats, err := aging.BuildFactTable(invoices, creditNotes, payments, asAt)
	if err != nil {
		return nil, err
	}
	s.logStats(uuid.NewString(), asAt, len(rows), stats)
	return rows, nil
}

// Invalidate drops all cached fact tables. Called after receivables change.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) buildFromRepo(ctx context.Context, asAt time.Time) ([]aging.AgedDocument, error) {
	var (
		invoices    []aging.Invoice
		creditNotes []aging.CreditNote
		payments    []aging.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.repo.ListInvoices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		creditNotes, err = s.repo.ListCreditNotes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.repo.ListPayments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, stats, err := aging.BuildFactTable(invoices, creditNotes, payments, asAt)
	if err != nil {
		return nil, err
	}
	s.logStats(uuid.NewString(), asAt, len(rows), stats)
	return rows, nil
}

func (s *Service) logStats(runID string, asAt time.Time, rowCount int, stats aging.Stats) {
	if s.logger == nil {
		return
	}
	logger := s.logger.With(
		slog.String("run_id", runID),
		slog.String("as_at", asAt.Format("2006-01-02")),
	)
	logger.Info("ageing fact table built",
		slog.Int("rows", rowCount),
		slog.Int("settled", stats.SettledOrOverpaid),
	)
	if stats.OrphanPayments > 0 {
		logger.Warn("payments referenced unknown documents", slog.Int("count", stats.OrphanPayments))
	}
	if stats.FutureDated > 0 {
		logger.Warn("future-dated documents excluded", slog.Int("count", stats.FutureDated))
	}
}
