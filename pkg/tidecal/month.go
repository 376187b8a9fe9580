package tidecal

import (
	"time"

	"github.com/spencer-p/tidecal/pkg/timetricks"
)

// MonthGrid is a calendar month laid out in weeks of seven, Sunday first.
// Cells outside the month are nil. Every day of the month is present even if
// the fetch produced no events for it.
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks [][]*Day
}

// Month assembles a grid for the given month from bucketed days. Days
// outside the month (padding fetched around the edges) are dropped.
func Month(year int, month time.Month, days []Day) MonthGrid {
	byDay := make(map[string]*Day)
	for i := range days {
		byDay[timetricks.UniqueDay(days[i].Date)] = &days[i]
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	n := timetricks.DaysIn(first)

	grid := MonthGrid{Year: year, Month: month}
	week := make([]*Day, 7)

	for date := first; date.Day() <= n && date.Month() == month; date = date.AddDate(0, 0, 1) {
		cell, ok := byDay[timetricks.UniqueDay(date)]
		if !ok {
			cell = &Day{Date: date}
		}
		week[int(date.Weekday())] = cell
		if date.Weekday() == time.Saturday {
			grid.Weeks = append(grid.Weeks, week)
			week = make([]*Day, 7)
		}
	}

	// Flush a partial last week.
	for _, cell := range week {
		if cell != nil {
			grid.Weeks = append(grid.Weeks, week)
			break
		}
	}

	return grid
}

// ThresholdDays counts the flagged days in the grid.
func (g MonthGrid) ThresholdDays() int {
	count := 0
	for _, week := range g.Weeks {
		for _, d := range week {
			if d != nil && d.MeetsThreshold {
				count++
			}
		}
	}
	return count
}
