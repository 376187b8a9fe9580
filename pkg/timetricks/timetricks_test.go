package timetricks

import (
	"fmt"
	"testing"
	"time"
)

func ExampleDaysIn() {
	for _, month := range []time.Month{time.January, time.February, time.April} {
		t := time.Date(2021, month, 15, 9, 30, 0, 0, time.Local)
		fmt.Println(DaysIn(t))
	}
	// Output:
	// 31
	// 28
	// 30
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2021, time.April, 17, 13, 5, 9, 0, time.Local)
	want := time.Date(2021, time.April, 1, 0, 0, 0, 0, time.Local)
	if got := MonthStart(in); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextMonthRollsYear(t *testing.T) {
	in := time.Date(2021, time.December, 31, 23, 59, 0, 0, time.Local)
	want := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.Local)
	if got := NextMonth(in); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseMonthRoundTrip(t *testing.T) {
	in := "2021-04"
	parsed, err := ParseMonth(in)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got := FormatMonth(parsed); got != in {
		t.Errorf("got %q, want %q", got, in)
	}
}

func TestParseMonthRejectsGarbage(t *testing.T) {
	if _, err := ParseMonth("next tuesday"); err == nil {
		t.Errorf("expected an error")
	}
}
