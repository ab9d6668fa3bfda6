package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/arfact/internal/aging"
	"github.com/odyssey-erp/arfact/internal/report"
)

// ReportService is the slice of the report service the warmup job needs.
type ReportService interface {
	FactTable(ctx context.Context, filter report.Filter) ([]aging.AgedDocument, error)
	Invalidate(ctx context.Context) error
}

// AgeingWarmupJob pre-populates the ageing fact table cache so the first
// morning request does not pay the computation cost.
type AgeingWarmupJob struct {
	Reports ReportService
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewAgeingWarmupJob wires dependencies for the warmup handler.
func NewAgeingWarmupJob(reports ReportService, logger *slog.Logger) *AgeingWarmupJob {
	return &AgeingWarmupJob{
		Reports: reports,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes ageing warmup tasks.
func (j *AgeingWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("ageing warmup: handler not configured")
	}
	var payload AgeingWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	asAt := j.now().Truncate(24 * time.Hour)
	if payload.AsAt != "" {
		parsed, err := time.Parse("2006-01-02", payload.AsAt)
		if err != nil {
			return asynq.SkipRetry
		}
		asAt = parsed
	}

	logger := j.logger().With(slog.String("as_at", asAt.Format("2006-01-02")))
	logger.Info("starting ageing warmup")
	started := j.now()

	// Drop stale entries so the warmup recomputes from current data.
	if err := j.Reports.Invalidate(ctx); err != nil {
		logger.Error("invalidate cache", slog.Any("error", err))
		return err
	}

	rows, err := j.Reports.FactTable(ctx, report.Filter{AsAt: asAt})
	if err != nil {
		logger.Error("warm fact table", slog.Any("error", err))
		return err
	}

	logger.Info("completed ageing warmup",
		slog.Int("rows", len(rows)),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *AgeingWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAgeingWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAgeingWarmup))
}

func (j *AgeingWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
