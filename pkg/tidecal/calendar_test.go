package tidecal

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/tidecal/pkg/noaa"
)

func pred(t time.Time, h float64, typ noaa.Tide) noaa.Prediction {
	return noaa.Prediction{Time: noaa.Time(t), Height: noaa.Height(h), Type: typ}
}

func date(day int) time.Time {
	return time.Date(2021, time.April, day, 0, 0, 0, 0, time.Local)
}

var threeDays = noaa.Predictions{
	pred(date(1).Add(3*time.Hour), 4.1, noaa.HighTide),
	pred(date(1).Add(9*time.Hour), -0.3, noaa.LowTide),
	pred(date(1).Add(15*time.Hour), 3.2, noaa.HighTide),
	pred(date(1).Add(21*time.Hour), 1.0, noaa.LowTide),
	pred(date(2).Add(4*time.Hour), 5.6, noaa.HighTide),
	pred(date(2).Add(10*time.Hour), 0.2, noaa.LowTide),
	pred(date(3).Add(5*time.Hour), 6.2, noaa.HighTide),
}

func TestBucketByDay(t *testing.T) {
	days := BucketByDay(threeDays)

	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}

	wantDates := []time.Time{date(1), date(2), date(3)}
	for i, d := range days {
		if !d.Date.Equal(wantDates[i]) {
			t.Errorf("day %d date = %v, want %v", i, d.Date, wantDates[i])
		}
	}

	if got, want := len(days[0].Events), 4; got != want {
		t.Errorf("day 0 has %d events, want %d", got, want)
	}
	if got, want := days[0].Max, noaa.Height(4.1); got != want {
		t.Errorf("day 0 max = %v, want %v", got, want)
	}
	if got, want := days[0].Min, noaa.Height(-0.3); got != want {
		t.Errorf("day 0 min = %v, want %v", got, want)
	}
}

func TestBucketByDayEmpty(t *testing.T) {
	if got := BucketByDay(nil); got != nil {
		t.Errorf("expected no days for no predictions, got %v", got)
	}
}

func TestMaxHigh(t *testing.T) {
	days := BucketByDay(threeDays)

	high, ok := days[0].MaxHigh()
	if !ok || high != 4.1 {
		t.Errorf("MaxHigh = %v, %v; want 4.1, true", high, ok)
	}

	lowOnly := Day{Events: noaa.Predictions{
		pred(date(4), 0.5, noaa.LowTide),
	}}
	if _, ok := lowOnly.MaxHigh(); ok {
		t.Errorf("expected no high tide in a low-only day")
	}
}

func TestApplyThreshold(t *testing.T) {
	table := []struct {
		name   string
		thresh *float64
		want   []bool
	}{{
		name:   "no threshold set",
		thresh: nil,
		want:   []bool{false, false, false},
	}, {
		name:   "five and a half feet",
		thresh: ptr(5.5),
		want:   []bool{false, true, true},
	}, {
		name:   "exactly at the max",
		thresh: ptr(6.2),
		want:   []bool{false, false, true},
	}, {
		name:   "nothing qualifies",
		thresh: ptr(10.0),
		want:   []bool{false, false, false},
	}}

	for _, test := range table {
		t.Run(test.name, func(t *testing.T) {
			days := BucketByDay(threeDays)
			ApplyThreshold(days, test.thresh)

			var got []bool
			for _, d := range days {
				got = append(got, d.MeetsThreshold)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong membership (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestThresholdIgnoresLowTides(t *testing.T) {
	// A big low tide should never trip the threshold.
	days := BucketByDay(noaa.Predictions{
		pred(date(1), 3.0, noaa.LowTide),
		pred(date(1).Add(6*time.Hour), 2.0, noaa.HighTide),
	})
	ApplyThreshold(days, ptr(2.5))
	if days[0].MeetsThreshold {
		t.Errorf("low tide of 3.0 tripped a 2.5 threshold")
	}
}

func TestUpcomingThresholdDays(t *testing.T) {
	days := BucketByDay(threeDays)
	ApplyThreshold(days, ptr(5.0))

	// From April 1, lead of 1 day covers April 1-2 only.
	got := UpcomingThresholdDays(days, date(1).Add(8*time.Hour), 1)
	if len(got) != 1 || !got[0].Date.Equal(date(2)) {
		t.Fatalf("got %v, want just April 2", got)
	}

	// Lead of 5 days picks up April 3 as well.
	got = UpcomingThresholdDays(days, date(1), 5)
	if len(got) != 2 {
		t.Fatalf("got %d days, want 2", len(got))
	}

	// Days already past don't alert.
	got = UpcomingThresholdDays(days, date(4), 7)
	if len(got) != 0 {
		t.Errorf("got %v, want none in the past", got)
	}
}

func ptr[T any](t T) *T {
	return &t
}
