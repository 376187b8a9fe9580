package timetricks

import (
	"time"
)

const (
	dayFormat   = "20060102"
	monthFormat = "2006-01"
)

func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.Format(dayFormat)
}

func TrimClock(t time.Time) time.Time {
	h, m, s := t.Clock()
	return t.Add(-1 *
		(time.Duration(h)*time.Hour +
			time.Duration(m)*time.Minute +
			time.Duration(s)*time.Second))
}

// UniqueDay returns a string representation of t that is unique by the day.
// For instance, two seperate times on the same calendar day return identical
// strings.
func UniqueDay(t time.Time) string {
	return t.Format(dayFormat)
}

// MonthStart returns midnight on the first of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NextMonth returns midnight on the first of the month after t's.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// PrevMonth returns midnight on the first of the month before t's.
func PrevMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, -1, 0)
}

// DaysIn counts the calendar days in t's month.
func DaysIn(t time.Time) int {
	return int(NextMonth(t).Sub(MonthStart(t)).Hours() / 24)
}

// ParseMonth reads a "2006-01" style month string in the local location.
func ParseMonth(s string) (time.Time, error) {
	return time.ParseInLocation(monthFormat, s, time.Local)
}

// FormatMonth is the inverse of ParseMonth.
func FormatMonth(t time.Time) string {
	return t.Format(monthFormat)
}
