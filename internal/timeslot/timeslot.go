// Package timeslot holds the date/time-of-day conventions shared by the
// booking and waiting-list packages. All times are naive local values:
// dates carry no clock, clocks carry no date.
package timeslot

import "time"

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

func ParseClock(s string) (time.Time, error) {
	return time.Parse(ClockLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// Combine merges a date and a time-of-day into a single local timestamp.
func Combine(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.Local)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// share any point. Touching intervals (e1 == s2) do not overlap. Values are
// compared as times of day so it does not matter which reference date the
// driver or parser attached.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return ClockMinutes(s1) < ClockMinutes(e2) && ClockMinutes(e1) > ClockMinutes(s2)
}

// ClockMinutes normalizes a time-of-day for comparisons independent of the
// date component a driver may have attached.
func ClockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
