// Package time contains time related helpers
package time

import "time"

// DayLayout is the calendar date layout used on the wire and in SQL parameters
const DayLayout = "2006-01-02"

// Day is one calendar day
const Day = 24 * time.Hour

// UTCDay truncates t to midnight UTC of its UTC calendar date
func UTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date as midnight UTC
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// FormatDay renders t's UTC calendar date as YYYY-MM-DD
func FormatDay(t time.Time) string { return t.UTC().Format(DayLayout) }

// AddDays shifts a UTC day by n calendar days
func AddDays(t time.Time, n int) time.Time { return UTCDay(t).AddDate(0, 0, n) }
