package reporthttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/arfact/internal/aging"
	"github.com/odyssey-erp/arfact/internal/aging/csvio"
	"github.com/odyssey-erp/arfact/internal/platform/httpx"
	"github.com/odyssey-erp/arfact/internal/report"
)

const requestTimeout = 10 * time.Second

// ReportService defines the ageing data contract used by the handler.
type ReportService interface {
	FactTable(ctx context.Context, filter report.Filter) ([]aging.AgedDocument, error)
	Preview(ctx context.Context, invoices []aging.Invoice, creditNotes []aging.CreditNote, payments []aging.Payment, asAt time.Time) ([]aging.AgedDocument, error)
	Invalidate(ctx context.Context) error
}

// Handler coordinates HTTP requests for the ageing report.
type Handler struct {
	logger    *slog.Logger
	service   ReportService
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler constructs the report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		now:       time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes attaches the ageing report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ar/ageing", h.handleFactTable)
	r.Get("/ar/ageing/export.csv", h.handleExportCSV)
	r.Post("/ar/ageing/preview", h.handlePreview)
	r.Post("/ar/ageing/refresh", h.handleRefresh)
}

// handleRefresh drops cached fact tables after receivables have changed.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.logError("invalidate cache", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}

func (h *Handler) handleFactTable(w http.ResponseWriter, r *http.Request) {
	asAt, err := h.parseAsAt(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, err := h.service.FactTable(ctx, report.Filter{AsAt: asAt})
	if err != nil {
		h.logError("load fact table", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"as_at_date": asAt.Format(csvio.DateLayout),
		"rows":       rows,
	})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	asAt, err := h.parseAsAt(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, err := h.service.FactTable(ctx, report.Filter{AsAt: asAt})
	if err != nil {
		h.logError("load fact table", err)
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("ar-ageing-%s.csv", asAt.Format(csvio.DateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := csvio.WriteFactTable(w, rows); err != nil {
		h.logError("stream csv", err)
	}
}

type previewInvoice struct {
	ID          string  `json:"id" validate:"required"`
	InvoiceDate string  `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	TotalAmount float64 `json:"total_amount"`
	CentreID    string  `json:"centre_id"`
	ClassID     string  `json:"class_id"`
}

type previewCreditNote struct {
	ID             string  `json:"id" validate:"required"`
	CreditNoteDate string  `json:"credit_note_date" validate:"required,datetime=2006-01-02"`
	TotalAmount    float64 `json:"total_amount"`
	CentreID       string  `json:"centre_id"`
	ClassID        string  `json:"class_id"`
}

type previewPayment struct {
	DocumentID  string  `json:"document_id" validate:"required"`
	PaymentDate string  `json:"payment_date" validate:"required,datetime=2006-01-02"`
	AmountPaid  float64 `json:"amount_paid"`
}

type previewRequest struct {
	AsAtDate    string              `json:"as_at_date" validate:"required,datetime=2006-01-02"`
	Invoices    []previewInvoice    `json:"invoices" validate:"dive"`
	CreditNotes []previewCreditNote `json:"credit_notes" validate:"dive"`
	Payments    []previewPayment    `json:"payments" validate:"dive"`
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Input", "request body is not valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	asAt, _ := time.Parse(csvio.DateLayout, req.AsAtDate)
	invoices := make([]aging.Invoice, 0, len(req.Invoices))
	for _, in := range req.Invoices {
		date, _ := time.Parse(csvio.DateLayout, in.InvoiceDate)
		invoices = append(invoices, aging.Invoice{
			ID:          in.ID,
			InvoiceDate: date,
			TotalAmount: in.TotalAmount,
			CentreID:    in.CentreID,
			ClassID:     in.ClassID,
		})
	}
	creditNotes := make([]aging.CreditNote, 0, len(req.CreditNotes))
	for _, cn := range req.CreditNotes {
		date, _ := time.Parse(csvio.DateLayout, cn.CreditNoteDate)
		creditNotes = append(creditNotes, aging.CreditNote{
			ID:             cn.ID,
			CreditNoteDate: date,
			TotalAmount:    cn.TotalAmount,
			CentreID:       cn.CentreID,
			ClassID:        cn.ClassID,
		})
	}
	payments := make([]aging.Payment, 0, len(req.Payments))
	for _, p := range req.Payments {
		date, _ := time.Parse(csvio.DateLayout, p.PaymentDate)
		payments = append(payments, aging.Payment{
			DocumentID:  p.DocumentID,
			PaymentDate: date,
			AmountPaid:  p.AmountPaid,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, err := h.service.Preview(ctx, invoices, creditNotes, payments, asAt)
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Malformed Input", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"as_at_date": req.AsAtDate,
		"rows":       rows,
	})
}

func (h *Handler) parseAsAt(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("as_at"))
	if raw == "" {
		now := h.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	asAt, err := time.Parse(csvio.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as_at %q, want YYYY-MM-DD", raw)
	}
	return asAt, nil
}

func validationDetail(err error) string {
	var fields []string
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range vErrs {
			fields = append(fields, fieldErr.Namespace())
		}
		return "invalid fields: " + strings.Join(fields, ", ")
	}
	return err.Error()
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
