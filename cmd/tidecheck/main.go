// Command tidecheck prints upcoming threshold-crossing days for a station.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spencer-p/tidecal/pkg/noaa"
	"github.com/spencer-p/tidecal/pkg/tidecal"
)

func main() {
	station := flag.Int("station", int(noaa.SantaCruz), "NOAA station id")
	days := flag.Int("days", 14, "days of predictions to check")
	thresh := flag.Float64("threshold", 5.0, "high tide threshold in feet above MLLW")
	flag.Parse()

	query := noaa.PredictionQuery{
		Start:    time.Now(),
		Duration: time.Duration(*days) * 24 * time.Hour,
		Station:  noaa.Station(*station),
	}

	preds, err := noaa.GetPredictions(&query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch from NOAA: %v\n", err)
		os.Exit(1)
	}

	bucketed := tidecal.BucketByDay(preds)
	tidecal.ApplyThreshold(bucketed, thresh)

	flagged := tidecal.UpcomingThresholdDays(bucketed, time.Now(), *days)
	if len(flagged) == 0 {
		fmt.Printf("no days reach %.1f ft in the next %d days\n", *thresh, *days)
		return
	}

	for _, d := range flagged {
		high, _ := d.MaxHigh()
		fmt.Printf("%s: high tide %.1f ft\n", d.Date.Format("Mon Jan 2"), high)
	}
}
