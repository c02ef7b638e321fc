package core

import "time"

// DaysIn returns the number of days in the given month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the inclusive bounds of t's calendar month in t's
// location: day 1 at 00:00 and the last day at 23:59:59.999999999.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	loc := t.Location()
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := time.Date(y, m, DaysIn(y, m), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
	return first, last
}

// DayKey identifies a calendar day, used as the reset guard key.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
