package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
	"go.uber.org/zap"
)

// summaryPayload is the JSON wrapper inside the base64 summary blob. Only the
// slp object matters here; the payload also carries step data (stp) and a
// version field that this pipeline ignores.
type summaryPayload struct {
	Slp *slpPayload `json:"slp"`
}

// slpPayload mirrors the vendor's slp object. Every field is optional
// upstream, so numeric fields are pointers and default on absence instead of
// failing the day.
type slpPayload struct {
	Dp    *int            `json:"dp"`
	Lt    *int            `json:"lt"`
	Wk    *int            `json:"wk"`
	St    *int64          `json:"st"`
	Ed    *int64          `json:"ed"`
	Stage []stageEntry    `json:"stage"`
	Nap   json.RawMessage `json:"nap"`
}

type stageEntry struct {
	Mode  *int `json:"mode"`
	Start *int `json:"start"`
	Stop  *int `json:"stop"`
}

type napEntry struct {
	Dur   *int `json:"dur"`
	Start *int `json:"start"`
	Stop  *int `json:"stop"`
}

// SummaryDecoder decodes one day's base64-encoded summary blob into a
// RawNightSummary.
type SummaryDecoder struct {
	logger *zap.Logger
}

// NewSummaryDecoder creates a SummaryDecoder.
func NewSummaryDecoder(logger *zap.Logger) *SummaryDecoder {
	return &SummaryDecoder{logger: logger}
}

// Decode parses the base64 summary text for the given day.
//
// Three outcomes are possible and callers must distinguish all of them:
//   - (summary, nil): the day has sleep data.
//   - (nil, nil): the day is valid but no sleep was tracked (empty summary
//     or no slp object in the payload).
//   - (nil, *domain.DecodeError): the payload exists but is malformed.
func (d *SummaryDecoder) Decode(date dateutil.Date, encoded string) (*domain.RawNightSummary, error) {
	if encoded == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &domain.DecodeError{Date: date, Cause: fmt.Errorf("base64: %w", err)}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var payload summaryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &domain.DecodeError{Date: date, Cause: fmt.Errorf("json: %w", err)}
	}

	// No slp object means the band tracked nothing that night. This is a
	// valid day, not a failure.
	if payload.Slp == nil {
		return nil, nil
	}

	slp := payload.Slp
	summary := &domain.RawNightSummary{
		DeepSleepMinutesReported:  intOrZero(slp.Dp),
		LightSleepMinutesReported: intOrZero(slp.Lt),
		WakeMinutes:               intOrZero(slp.Wk),
		StartEpochSeconds:         int64OrZero(slp.St),
		EndEpochSeconds:           int64OrZero(slp.Ed),
	}

	for _, entry := range slp.Stage {
		if entry.Mode == nil || entry.Start == nil || entry.Stop == nil {
			summary.SkippedStages++
			continue
		}
		summary.Stages = append(summary.Stages, domain.StageRecord{
			Mode:        domain.StageMode(*entry.Mode),
			StartOffset: *entry.Start,
			StopOffset:  *entry.Stop,
		})
	}

	summary.Naps, summary.SkippedNaps = d.decodeNaps(slp.Nap)

	if summary.SkippedStages > 0 || summary.SkippedNaps > 0 {
		d.logger.Warn("skipped malformed summary entries",
			zap.String("date", date.String()),
			zap.Int("skipped_stages", summary.SkippedStages),
			zap.Int("skipped_naps", summary.SkippedNaps),
		)
	}

	return summary, nil
}

// decodeNaps handles both shapes the vendor has been observed to use for the
// nap field: a bare number of minutes, or an array of nap objects carrying
// either a duration or a start/stop pair.
func (d *SummaryDecoder) decodeNaps(raw json.RawMessage) ([]domain.NapRecord, int) {
	if len(raw) == 0 {
		return nil, 0
	}

	var minutes int
	if err := json.Unmarshal(raw, &minutes); err == nil {
		if minutes == 0 {
			return nil, 0
		}
		return []domain.NapRecord{{DurationMinutes: minutes}}, 0
	}

	var entries []napEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Unrecognized nap shape: skip the whole field, not the day.
		return nil, 1
	}

	var naps []domain.NapRecord
	skipped := 0
	for _, entry := range entries {
		switch {
		case entry.Dur != nil:
			naps = append(naps, domain.NapRecord{DurationMinutes: *entry.Dur})
		case entry.Start != nil && entry.Stop != nil:
			dur := *entry.Stop - *entry.Start
			if dur < 0 {
				dur = 0
			}
			naps = append(naps, domain.NapRecord{DurationMinutes: dur})
		default:
			skipped++
		}
	}
	return naps, skipped
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func int64OrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
