package domain

// StageMode is the vendor's integer code classifying one sleep stage.
// Codes 7 and 8 are both REM variants; the device firmware is known to flip
// between them, so they are only meaningful summed together.
type StageMode int

const (
	StageModeLight    StageMode = 4
	StageModeDeep     StageMode = 5
	StageModeREMShort StageMode = 7
	StageModeREMLong  StageMode = 8
)

// StageClass is the derived sleep-stage category used for aggregation.
type StageClass string

const (
	StageClassLight   StageClass = "light"
	StageClassDeep    StageClass = "deep"
	StageClassREM     StageClass = "rem"
	StageClassUnknown StageClass = "unknown"
)

// Class maps the vendor mode code to an aggregation category. Codes outside
// the known set are preserved on the record but classified as unknown and
// excluded from category totals.
func (m StageMode) Class() StageClass {
	switch m {
	case StageModeLight:
		return StageClassLight
	case StageModeDeep:
		return StageClassDeep
	case StageModeREMShort, StageModeREMLong:
		return StageClassREM
	default:
		return StageClassUnknown
	}
}

// StageRecord is one contiguous interval of a single sleep-state
// classification. Offsets are minutes relative to the start of the report
// day. The upstream source does not guarantee Stop >= Start.
type StageRecord struct {
	Mode        StageMode
	StartOffset int
	StopOffset  int
}

// Duration returns the stage length in minutes, clamped to zero when the
// upstream interval is inverted.
func (s StageRecord) Duration() int {
	if s.StopOffset < s.StartOffset {
		return 0
	}
	return s.StopOffset - s.StartOffset
}

// Inverted reports whether the upstream interval has stop before start.
func (s StageRecord) Inverted() bool {
	return s.StopOffset < s.StartOffset
}

// NapRecord is one daytime nap. Naps are summed independently and never
// mixed into the deep/light/REM totals.
type NapRecord struct {
	DurationMinutes int
}

// StageTotals holds per-category minute totals derived from stage records,
// plus diagnostic counts for data-quality tracking.
type StageTotals struct {
	DeepMinutes  int
	LightMinutes int
	REMMinutes   int

	// UnknownModeCount is the number of stages whose mode code is outside
	// the known set; they contribute to no total.
	UnknownModeCount int
	// ClampedCount is the number of stages with stop < start whose
	// contribution was clamped to zero.
	ClampedCount int
}
