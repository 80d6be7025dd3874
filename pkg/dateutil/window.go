package dateutil

import "time"

// LastCompleteWeek returns Monday through Sunday of the previous complete
// week relative to today in the given location.
// Example: if today is Wednesday 2025-09-10, it returns 2025-09-01..2025-09-07.
func LastCompleteWeek(loc *time.Location) (Date, Date) {
	return lastCompleteWeekFrom(time.Now().In(loc))
}

func lastCompleteWeekFrom(now time.Time) (Date, Date) {
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	weekday := (int(now.Weekday()) + 6) % 7
	start := DateOf(now).AddDays(-(weekday + 7))
	return start, start.AddDays(6)
}

// LastNDays returns the inclusive range covering the last n days including
// today in the given location.
func LastNDays(n int, loc *time.Location) (Date, Date) {
	if n < 1 {
		n = 1
	}
	today := DateOf(time.Now().In(loc))
	return today.AddDays(-(n - 1)), today
}

// FormatEpoch converts an epoch-seconds value to an ISO 8601 timestamp in the
// given location. A zero epoch means "unset" upstream and yields an empty
// string rather than 1970-01-01.
func FormatEpoch(sec int64, loc *time.Location) string {
	if sec == 0 {
		return ""
	}
	return time.Unix(sec, 0).In(loc).Format(time.RFC3339)
}
