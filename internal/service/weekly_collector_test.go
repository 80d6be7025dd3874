package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"go.uber.org/zap"
)

func newTestCollector(source SummarySource) *WeeklyCollector {
	logger := zap.NewNop()
	return NewWeeklyCollector(source, NewSummaryDecoder(logger), NewNightBuilder(time.UTC, logger), logger)
}

func TestCollectInvalidRange(t *testing.T) {
	collector := newTestCollector(NewMockSummarySource())

	from := mustDate(t, "2024-01-07")
	to := mustDate(t, "2024-01-01")

	_, err := collector.Collect(context.Background(), from, to)
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestCollectDateRangeCompleteness(t *testing.T) {
	source := NewMockSummarySource()
	good := encodeSummary(`{"slp": {"dp": 60, "lt": 120, "stage": [{"mode": 8, "start": 0, "stop": 30}]}}`)
	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-04", "2024-01-06", "2024-01-07"} {
		source.payloads[d] = good
	}
	// Days 3 and 5 fail at the transport level.
	source.errs["2024-01-03"] = errors.New("connection reset")
	source.errs["2024-01-05"] = errors.New("http 502")

	collector := newTestCollector(source)
	dataset, err := collector.Collect(context.Background(), mustDate(t, "2024-01-01"), mustDate(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if len(dataset.Days) != 7 {
		t.Fatalf("got %d days, want 7 even with failures", len(dataset.Days))
	}
	for i, day := range dataset.Days {
		want := mustDate(t, "2024-01-01").AddDays(i)
		if day.Date != want {
			t.Fatalf("day %d has date %s, want %s (ascending order)", i, day.Date, want)
		}
	}

	for _, i := range []int{2, 4} {
		day := dataset.Days[i]
		if day.Present() {
			t.Fatalf("failed day %s should be absent", day.Date)
		}
		if !day.Failed() {
			t.Fatalf("failed day %s should carry its error", day.Date)
		}
		var transportErr *domain.TransportError
		if !errors.As(day.Err, &transportErr) {
			t.Fatalf("day %s error is %T, want TransportError", day.Date, day.Err)
		}
	}

	if got := len(dataset.Nights()); got != 5 {
		t.Fatalf("got %d populated nights, want 5", got)
	}
}

func TestCollectAbsenceVersusZero(t *testing.T) {
	source := NewMockSummarySource()
	// Day 1: tracked but every field zero. Day 2: no summary at all.
	source.payloads["2024-01-01"] = encodeSummary(`{"slp": {"dp": 0, "lt": 0, "wk": 0}}`)
	source.payloads["2024-01-02"] = ""

	collector := newTestCollector(source)
	dataset, err := collector.Collect(context.Background(), mustDate(t, "2024-01-01"), mustDate(t, "2024-01-02"))
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	zeroDay, emptyDay := dataset.Days[0], dataset.Days[1]
	if !zeroDay.Present() {
		t.Fatal("all-zero day must be a populated record, not an absence marker")
	}
	if emptyDay.Present() {
		t.Fatal("empty-summary day must be an absence marker")
	}
	if emptyDay.Failed() {
		t.Fatal("empty-summary day is valid no-data, not a failure")
	}
}

func TestCollectDecodeFailureIsolatedPerDay(t *testing.T) {
	source := NewMockSummarySource()
	source.payloads["2024-01-01"] = "!!!corrupt!!!"
	source.payloads["2024-01-02"] = encodeSummary(`{"slp": {"dp": 45}}`)

	collector := newTestCollector(source)
	dataset, err := collector.Collect(context.Background(), mustDate(t, "2024-01-01"), mustDate(t, "2024-01-02"))
	if err != nil {
		t.Fatalf("per-day decode failure must not fail the batch: %v", err)
	}

	bad := dataset.Days[0]
	if !bad.Failed() {
		t.Fatalf("corrupt day should be a failed absence marker: %+v", bad)
	}
	var decodeErr *domain.DecodeError
	if !errors.As(bad.Err, &decodeErr) {
		t.Fatalf("corrupt day error is %T, want DecodeError", bad.Err)
	}

	if !dataset.Days[1].Present() {
		t.Fatal("day after a decode failure should still be populated")
	}
}

func TestCollectSingleDayRange(t *testing.T) {
	source := NewMockSummarySource()
	source.payloads["2024-01-01"] = encodeSummary(`{"slp": {"dp": 30}}`)

	collector := newTestCollector(source)
	day := mustDate(t, "2024-01-01")
	dataset, err := collector.Collect(context.Background(), day, day)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(dataset.Days) != 1 || !dataset.Days[0].Present() {
		t.Fatalf("single-day range wrong: %+v", dataset.Days)
	}
}
