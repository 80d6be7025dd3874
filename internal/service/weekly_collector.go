package service

import (
	"context"
	"fmt"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SummarySource provides the raw base64 summary text for one calendar day.
// An empty string with a nil error means the vendor has no data for the day.
type SummarySource interface {
	FetchDay(ctx context.Context, date dateutil.Date) (string, error)
}

// WeeklyCollector walks an inclusive date range and produces one daily
// result per day, in ascending date order.
type WeeklyCollector struct {
	source  SummarySource
	decoder *SummaryDecoder
	builder *NightBuilder
	logger  *zap.Logger
}

// NewWeeklyCollector creates a WeeklyCollector.
func NewWeeklyCollector(source SummarySource, decoder *SummaryDecoder, builder *NightBuilder, logger *zap.Logger) *WeeklyCollector {
	return &WeeklyCollector{
		source:  source,
		decoder: decoder,
		builder: builder,
		logger:  logger,
	}
}

// Collect fetches, decodes and builds every day in [from, to].
//
// Per-day failures (transport or decode) are converted to absence markers
// for that date only and never abort the remaining days. The only fatal
// condition is a structurally invalid range: from after to fails the whole
// call, since no partial result would be meaningful.
func (c *WeeklyCollector) Collect(ctx context.Context, from, to dateutil.Date) (*domain.WeeklyDataset, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from %s is after to %s", domain.ErrInvalidDateRange, from, to)
	}

	tracer := otel.Tracer("zepp-sleep-report/collector")
	ctx, span := tracer.Start(ctx, "WeeklyCollector.Collect",
		trace.WithAttributes(
			attribute.String("window.from", from.String()),
			attribute.String("window.to", to.String()),
		),
	)
	defer span.End()

	days := from.DaysUntil(to) + 1
	dataset := &domain.WeeklyDataset{
		From: from,
		To:   to,
		Days: make([]domain.DailyResult, 0, days),
	}

	for date := from; !date.After(to); date = date.AddDays(1) {
		dataset.Days = append(dataset.Days, c.collectDay(ctx, date))
	}

	populated := len(dataset.Nights())
	span.SetAttributes(
		attribute.Int("window.days", days),
		attribute.Int("window.populated", populated),
	)
	c.logger.Info("collected sleep window",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int("days", days),
		zap.Int("populated", populated),
	)

	return dataset, nil
}

func (c *WeeklyCollector) collectDay(ctx context.Context, date dateutil.Date) domain.DailyResult {
	encoded, err := c.source.FetchDay(ctx, date)
	if err != nil {
		c.logger.Warn("day fetch failed",
			zap.String("date", date.String()),
			zap.Error(err),
		)
		return domain.DailyResult{Date: date, Err: &domain.TransportError{Date: date, Cause: err}}
	}

	summary, decodeErr := c.decoder.Decode(date, encoded)
	if decodeErr != nil {
		c.logger.Warn("day decode failed",
			zap.String("date", date.String()),
			zap.Error(decodeErr),
		)
	}
	return c.builder.BuildResult(date, summary, decodeErr)
}
