package domain

import (
	"encoding/json"
	"time"

	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
)

// RawNightSummary is the decoder's direct output for one day: the top-level
// fields of the vendor's `slp` object plus the parsed stage and nap entries.
// No derived fields live here.
type RawNightSummary struct {
	// Reported minute totals from the vendor payload. These are what the
	// device firmware computed, which may disagree with sums reconstructed
	// from the stage array.
	DeepSleepMinutesReported  int
	LightSleepMinutesReported int
	WakeMinutes               int

	// Sleep window as epoch seconds; 0 means the field was absent upstream.
	StartEpochSeconds int64
	EndEpochSeconds   int64

	Stages []StageRecord
	Naps   []NapRecord

	// SkippedStages and SkippedNaps count entries dropped for missing
	// required sub-fields. Surfaced for diagnostics only.
	SkippedStages int
	SkippedNaps   int
}

// NightRecord is the normalized per-day output unit.
//
// Deep, shallow and wake minutes are carried from the vendor's top-level
// fields, which take precedence over stage-derived sums. REM has no top-level
// field upstream and is always derived from the stage array.
type NightRecord struct {
	Date dateutil.Date `json:"date"`

	DeepSleepMinutes    int `json:"deepSleepTime"`
	ShallowSleepMinutes int `json:"shallowSleepTime"`
	WakeMinutes         int `json:"wakeTime"`
	REMMinutes          int `json:"REMTime"`
	NapMinutes          int `json:"naps"`

	// StartTime and StopTime are zero when the corresponding epoch field
	// was absent upstream. They are never defaulted to the Unix epoch.
	StartTime time.Time `json:"start"`
	StopTime  time.Time `json:"stop"`
}

// MarshalJSON omits the sleep window fields when they are unset. omitempty
// cannot do this for struct-typed fields, and a serialized zero time would
// read as a real year-one timestamp downstream.
func (n NightRecord) MarshalJSON() ([]byte, error) {
	type nightAlias NightRecord
	aux := struct {
		nightAlias
		StartTime *time.Time `json:"start,omitempty"`
		StopTime  *time.Time `json:"stop,omitempty"`
	}{nightAlias: nightAlias(n)}
	if !n.StartTime.IsZero() {
		aux.StartTime = &n.StartTime
	}
	if !n.StopTime.IsZero() {
		aux.StopTime = &n.StopTime
	}
	return json.Marshal(aux)
}

// DailyResult wraps one requested day: either a populated night record or an
// explicit absence marker. Absence is distinct from a record with all-zero
// durations: zero means tracked-but-none, absence means not retrievable or
// not tracked at all.
type DailyResult struct {
	Date dateutil.Date `json:"date"`

	// Night is nil when no record could be produced for the day.
	Night *NightRecord `json:"night,omitempty"`

	// Err records why the day is absent. A nil Err with a nil Night means
	// the day was fetched successfully but no sleep was tracked.
	Err error `json:"-"`
}

// Present reports whether the day has a populated night record.
func (r DailyResult) Present() bool {
	return r.Night != nil
}

// Failed reports whether the day is absent because of a transport or decode
// failure, as opposed to a tracked day with no sleep data.
func (r DailyResult) Failed() bool {
	return r.Night == nil && r.Err != nil
}

// WeeklyDataset is the ordered per-day output for one requested inclusive
// date range. It always contains exactly one entry per day in the range, in
// ascending date order; days that failed or had no data are absence markers,
// never silently dropped.
type WeeklyDataset struct {
	From dateutil.Date `json:"from"`
	To   dateutil.Date `json:"to"`
	Days []DailyResult `json:"days"`
}

// Nights returns the populated night records in date order.
func (d *WeeklyDataset) Nights() []NightRecord {
	nights := make([]NightRecord, 0, len(d.Days))
	for _, day := range d.Days {
		if day.Night != nil {
			nights = append(nights, *day.Night)
		}
	}
	return nights
}
