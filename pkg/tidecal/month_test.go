package tidecal

import (
	"testing"
	"time"

	"github.com/spencer-p/tidecal/pkg/noaa"
)

func TestMonthGridShape(t *testing.T) {
	// April 2021 starts on a Thursday and has 30 days.
	grid := Month(2021, time.April, nil)

	if got, want := len(grid.Weeks), 5; got != want {
		t.Fatalf("got %d weeks, want %d", got, want)
	}
	for i, week := range grid.Weeks {
		if len(week) != 7 {
			t.Errorf("week %d has %d cells, want 7", i, len(week))
		}
	}

	// Leading pad: Sunday through Wednesday are outside the month.
	for wd := time.Sunday; wd < time.Thursday; wd++ {
		if grid.Weeks[0][wd] != nil {
			t.Errorf("expected nil pad on %v", wd)
		}
	}
	if d := grid.Weeks[0][time.Thursday]; d == nil || d.Date.Day() != 1 {
		t.Errorf("April 1 not in the Thursday slot")
	}

	// Last day lands on a Friday; Saturday is padding.
	last := grid.Weeks[4][time.Friday]
	if last == nil || last.Date.Day() != 30 {
		t.Errorf("April 30 not in the Friday slot of the last week")
	}
	if grid.Weeks[4][time.Saturday] != nil {
		t.Errorf("expected nil pad after the last day")
	}
}

func TestMonthIncludesEmptyDays(t *testing.T) {
	// Only one day has data; the rest of the month must still be present.
	days := BucketByDay(noaa.Predictions{
		pred(date(15), 4.0, noaa.HighTide),
	})
	grid := Month(2021, time.April, days)

	seen := 0
	for _, week := range grid.Weeks {
		for _, d := range week {
			if d == nil {
				continue
			}
			seen++
			if d.Date.Day() == 15 && len(d.Events) == 0 {
				t.Errorf("April 15 lost its events")
			}
			if d.Date.Day() != 15 && len(d.Events) != 0 {
				t.Errorf("day %d unexpectedly has events", d.Date.Day())
			}
		}
	}
	if seen != 30 {
		t.Errorf("grid holds %d days, want 30", seen)
	}
}

func TestMonthDropsPadding(t *testing.T) {
	// Bucketed data often includes a padding day on either side of the
	// month; those must not leak into the grid.
	days := BucketByDay(noaa.Predictions{
		pred(time.Date(2021, time.March, 31, 6, 0, 0, 0, time.Local), 3.0, noaa.HighTide),
		pred(date(1).Add(6*time.Hour), 4.0, noaa.HighTide),
		pred(time.Date(2021, time.May, 1, 6, 0, 0, 0, time.Local), 5.0, noaa.HighTide),
	})
	grid := Month(2021, time.April, days)

	for _, week := range grid.Weeks {
		for _, d := range week {
			if d != nil && d.Date.Month() != time.April {
				t.Errorf("grid leaked %v", d.Date)
			}
		}
	}
}

func TestThresholdDaysCount(t *testing.T) {
	days := BucketByDay(threeDays)
	ApplyThreshold(days, ptr(5.0))
	grid := Month(2021, time.April, days)

	if got, want := grid.ThresholdDays(), 2; got != want {
		t.Errorf("ThresholdDays = %d, want %d", got, want)
	}
}
