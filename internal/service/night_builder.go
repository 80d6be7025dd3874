package service

import (
	"time"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
	"go.uber.org/zap"
)

// NightBuilder merges decoder and aggregator output into one normalized
// night record per day.
type NightBuilder struct {
	loc    *time.Location
	logger *zap.Logger
}

// NewNightBuilder creates a NightBuilder. Timestamps on built records are
// converted into loc.
func NewNightBuilder(loc *time.Location, logger *zap.Logger) *NightBuilder {
	if loc == nil {
		loc = time.UTC
	}
	return &NightBuilder{loc: loc, logger: logger}
}

// Build produces the night record for one decoded summary.
//
// Field precedence: deep, shallow and wake minutes come from the vendor's
// top-level fields, not from stage sums. REM is always the stage-derived
// mode-7 plus mode-8 total. A zero start/end epoch leaves the corresponding
// time unset rather than pointing at the Unix epoch.
func (b *NightBuilder) Build(date dateutil.Date, summary *domain.RawNightSummary) *domain.NightRecord {
	totals := AggregateStages(summary.Stages)

	if totals.ClampedCount > 0 || totals.UnknownModeCount > 0 {
		b.logger.Warn("stage data quality issues",
			zap.String("date", date.String()),
			zap.Int("clamped_stages", totals.ClampedCount),
			zap.Int("unknown_modes", totals.UnknownModeCount),
		)
	}

	night := &domain.NightRecord{
		Date:                date,
		DeepSleepMinutes:    summary.DeepSleepMinutesReported,
		ShallowSleepMinutes: summary.LightSleepMinutesReported,
		WakeMinutes:         summary.WakeMinutes,
		REMMinutes:          totals.REMMinutes,
		NapMinutes:          sumNaps(summary.Naps),
	}

	if summary.StartEpochSeconds != 0 {
		night.StartTime = time.Unix(summary.StartEpochSeconds, 0).In(b.loc)
	}
	if summary.EndEpochSeconds != 0 {
		night.StopTime = time.Unix(summary.EndEpochSeconds, 0).In(b.loc)
	}

	return night
}

// BuildResult wraps Build with the decoder's three-way outcome: a populated
// record, a tracked-but-empty day, or a failed day. Failed days become
// absence markers carrying the cause, never zero-filled records.
func (b *NightBuilder) BuildResult(date dateutil.Date, summary *domain.RawNightSummary, decodeErr error) domain.DailyResult {
	if decodeErr != nil {
		return domain.DailyResult{Date: date, Err: decodeErr}
	}
	if summary == nil {
		return domain.DailyResult{Date: date}
	}
	return domain.DailyResult{Date: date, Night: b.Build(date, summary)}
}

func sumNaps(naps []domain.NapRecord) int {
	total := 0
	for _, nap := range naps {
		total += nap.DurationMinutes
	}
	return total
}
