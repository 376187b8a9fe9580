package sunset

import (
	"testing"
	"time"
)

var santaCruz = Place{36.9741, -122.0308}

func TestGetSunEventsOrdering(t *testing.T) {
	start := time.Date(2020, time.October, 25, 0, 0, 0, 0, time.Local)
	dur := 5 * 24 * time.Hour
	events := GetSunEvents(start, dur, santaCruz)

	if got, want := len(events), 10; got != want {
		t.Fatalf("got %d events, want %d", got, want)
	}

	for i, e := range events {
		wantRise := i%2 == 0
		if (e.Event == Sunrise) != wantRise {
			t.Errorf("event %d: rise/set out of order", i)
		}
		if i > 0 && !events[i-1].Time.Before(e.Time) {
			t.Errorf("event %d not after event %d", i, i-1)
		}
	}
}

func TestDaylightOn(t *testing.T) {
	start := time.Date(2020, time.October, 25, 0, 0, 0, 0, time.Local)
	events := GetSunEvents(start, 3*24*time.Hour, santaCruz)

	day2 := start.Add(24 * time.Hour)
	rise, set, ok := DaylightOn(events, day2)
	if !ok {
		t.Fatalf("no daylight found for covered day")
	}
	if !rise.Before(set) {
		t.Errorf("sunrise %v not before sunset %v", rise, set)
	}

	if _, _, ok := DaylightOn(events, start.Add(30*24*time.Hour)); ok {
		t.Errorf("found daylight outside the event range")
	}
}
