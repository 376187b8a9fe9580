package visualize

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spencer-p/tidecal/pkg/noaa"
	"github.com/spencer-p/tidecal/pkg/sunset"
)

func preds(start time.Time) noaa.Predictions {
	var out noaa.Predictions
	heights := []float64{4.5, -0.5, 3.8, 0.7, 5.1, -0.2}
	for i, h := range heights {
		out = append(out, noaa.Prediction{
			Time:   noaa.Time(start.Add(time.Duration(i*6) * time.Hour)),
			Height: noaa.Height(h),
		})
	}
	return out
}

func TestEncode(t *testing.T) {
	start := time.Date(2021, time.April, 3, 2, 0, 0, 0, time.Local)
	sunEvents := sunset.GetSunEvents(start, 2*24*time.Hour, sunset.Place{Lat: 36.97, Long: -122.03})
	thresh := 5.5

	img := NewDaily(preds(start), sunEvents, &thresh)
	img.SetDate(start)

	var buf bytes.Buffer
	if _, err := img.Encode(&buf); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	svg := buf.String()

	for _, want := range []string{"<svg", "</svg>", `class="tide"`, `class="threshold"`, `class="daytime"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestEncodeNoThreshold(t *testing.T) {
	start := time.Date(2021, time.April, 3, 2, 0, 0, 0, time.Local)
	img := NewDaily(preds(start), nil, nil)
	img.SetDate(start)

	var buf bytes.Buffer
	if _, err := img.Encode(&buf); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if strings.Contains(buf.String(), `class="threshold"`) {
		t.Errorf("threshold drawn without a configured threshold")
	}
}

func TestEncodeEmptyDay(t *testing.T) {
	// A day entirely outside the prediction range still renders valid,
	// if empty, SVG.
	start := time.Date(2021, time.April, 3, 2, 0, 0, 0, time.Local)
	img := NewDaily(preds(start), nil, nil)
	img.SetDate(start.Add(60 * 24 * time.Hour))

	var buf bytes.Buffer
	if _, err := img.Encode(&buf); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	svg := buf.String()
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Errorf("not a well formed svg: %q", svg)
	}
	if strings.Contains(svg, `class="tide"`) {
		t.Errorf("tide path drawn with no data")
	}
}
