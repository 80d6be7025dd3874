package service

import (
	"github.com/blaisecz/zepp-sleep-report/internal/domain"
)

// AggregateStages partitions stage records by mode and sums clamped
// durations per category.
//
// Overlapping intervals are intentionally not merged or deduplicated: each
// stage contributes its full clamped duration even when it double-counts
// time. The upstream device data is known to be imprecise in exactly this
// way, and any normalization would need to be a separate, separately tested
// step.
//
// The deep and light totals computed here are for cross-validation only; the
// final night record carries the vendor's top-level dp/lt fields. The REM
// total is authoritative because no top-level REM field exists upstream.
func AggregateStages(stages []domain.StageRecord) domain.StageTotals {
	var totals domain.StageTotals

	for _, stage := range stages {
		if stage.Inverted() {
			totals.ClampedCount++
		}
		dur := stage.Duration()

		switch stage.Mode.Class() {
		case domain.StageClassDeep:
			totals.DeepMinutes += dur
		case domain.StageClassLight:
			totals.LightMinutes += dur
		case domain.StageClassREM:
			totals.REMMinutes += dur
		default:
			totals.UnknownModeCount++
		}
	}

	return totals
}
