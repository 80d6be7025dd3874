// Package export renders a weekly dataset as tabular files (CSV and XLSX).
package export

import (
	"strconv"
	"time"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
)

// Header is the fixed column order of every export format.
var Header = []string{
	"date",
	"deepSleepTime",
	"shallowSleepTime",
	"wakeTime",
	"start",
	"stop",
	"REMTime",
	"naps",
}

// Rows flattens the dataset into one row per requested day, in date order.
// Absence markers become rows whose data cells are blank; blank and "0" are
// deliberately different things downstream.
func Rows(dataset *domain.WeeklyDataset) [][]string {
	rows := make([][]string, 0, len(dataset.Days))
	for _, day := range dataset.Days {
		rows = append(rows, row(day))
	}
	return rows
}

func row(day domain.DailyResult) []string {
	if day.Night == nil {
		return []string{day.Date.String(), "", "", "", "", "", "", ""}
	}

	night := day.Night
	return []string{
		night.Date.String(),
		strconv.Itoa(night.DeepSleepMinutes),
		strconv.Itoa(night.ShallowSleepMinutes),
		strconv.Itoa(night.WakeMinutes),
		formatTime(night.StartTime),
		formatTime(night.StopTime),
		strconv.Itoa(night.REMMinutes),
		strconv.Itoa(night.NapMinutes),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
