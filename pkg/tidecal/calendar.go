package tidecal

import (
	"time"

	"github.com/spencer-p/tidecal/pkg/noaa"
	"github.com/spencer-p/tidecal/pkg/timetricks"
)

const day = 24 * time.Hour

// Day is one calendar day of tide events with its extremes. A Day with no
// Events is a gap at the edge of the fetched range and renders flat.
type Day struct {
	Date           time.Time        `json:"date"`
	Events         noaa.Predictions `json:"events"`
	Max            noaa.Height      `json:"max"`
	Min            noaa.Height      `json:"min"`
	MeetsThreshold bool             `json:"meets_threshold"`
}

// MaxHigh returns the largest high tide of the day. ok is false when the day
// has no high tide events.
func (d Day) MaxHigh() (noaa.Height, bool) {
	var max noaa.Height
	found := false
	for _, e := range d.Events {
		if e.Type != noaa.HighTide {
			continue
		}
		if !found || e.Height > max {
			max = e.Height
			found = true
		}
	}
	return max, found
}

// BucketByDay groups predictions by calendar day, in order, computing each
// day's max and min over every event. Predictions are assumed sorted by
// time, which is how NOAA returns them.
func BucketByDay(preds noaa.Predictions) []Day {
	var days []Day
	for _, p := range preds {
		t := p.T()
		if len(days) == 0 || !timetricks.SameDay(days[len(days)-1].Date, t) {
			days = append(days, Day{
				Date: timetricks.TrimClock(t),
				Max:  p.Height,
				Min:  p.Height,
			})
		}
		d := &days[len(days)-1]
		d.Events = append(d.Events, p)
		if p.Height > d.Max {
			d.Max = p.Height
		}
		if p.Height < d.Min {
			d.Min = p.Height
		}
	}
	return days
}

// ApplyThreshold marks days whose largest high tide reaches thresh. A nil
// threshold marks nothing; an unset preference means the user has not opted
// in to flagging.
func ApplyThreshold(days []Day, thresh *float64) {
	for i := range days {
		days[i].MeetsThreshold = false
		if thresh == nil {
			continue
		}
		if high, ok := days[i].MaxHigh(); ok && float64(high) >= *thresh {
			days[i].MeetsThreshold = true
		}
	}
}

// UpcomingThresholdDays filters days down to threshold days in the window
// [today, today+leadDays], inclusive on both ends.
func UpcomingThresholdDays(days []Day, now time.Time, leadDays int) []Day {
	today := timetricks.TrimClock(now)
	horizon := today.Add(time.Duration(leadDays) * day)

	var upcoming []Day
	for _, d := range days {
		if !d.MeetsThreshold {
			continue
		}
		if d.Date.Before(today) || d.Date.After(horizon) {
			continue
		}
		upcoming = append(upcoming, d)
	}
	return upcoming
}
