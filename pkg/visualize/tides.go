// Package visualize renders a day of tide as an inline SVG sparkline for a
// calendar cell.
package visualize

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spencer-p/tidecal/pkg/noaa"
	"github.com/spencer-p/tidecal/pkg/noaa/splines"
	"github.com/spencer-p/tidecal/pkg/sunset"
	"github.com/spencer-p/tidecal/pkg/timetricks"
)

const (
	width  = 240
	height = 80

	// Vertical scale covers -2ft to +8ft of tide above MLLW, which is
	// plenty for US stations.
	minHeight = -2.0
	maxHeight = 8.0

	samples = 48
)

// Daily draws one calendar day's tide curve. The predictions should extend a
// little past the day on both sides so the curve doesn't start mid-air.
type Daily struct {
	date      time.Time
	spline    splines.Spline
	sunEvents sunset.SunEvents
	thresh    *float64
}

func NewDaily(tidePreds noaa.Predictions, sunEvents sunset.SunEvents, thresh *float64) *Daily {
	return &Daily{
		spline:    splines.CurvesBetween(tidePreds),
		sunEvents: sunEvents,
		thresh:    thresh,
	}
}

// SetDate points the image at a calendar day. The same Daily renders every
// day of a month in turn.
func (img *Daily) SetDate(t time.Time) {
	img.date = timetricks.TrimClock(t)
}

func (img *Daily) Encode(w io.Writer) (int, error) {
	var n int
	var err error
	io := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil {
			err = nexterr
		}
	}

	io(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height))

	// Shade the daylight window behind the curve.
	if rise, set, ok := sunset.DaylightOn(img.sunEvents, img.date); ok {
		risex := img.timeToX(rise)
		setx := img.timeToX(set)
		io(fmt.Fprintf(w, `<rect class="daytime" fill="lightyellow" x="%d" y="0" width="%d" height="%d"/>`,
			risex, setx-risex, height))
	}

	// The tide curve, sampled across the day.
	dayEnd := img.date.Add(24 * time.Hour)
	heights := splines.Window(img.spline, img.date, dayEnd, samples)
	io(img.encodeCurve(w, heights))

	// Threshold line on top, if the user has one.
	if img.thresh != nil {
		y := heightToY(noaa.Height(*img.thresh))
		io(fmt.Fprintf(w, `<line class="threshold" stroke="#e76f51" stroke-dasharray="4" x1="0" y1="%d" x2="%d" y2="%d"/>`,
			y, width, y))
	}

	io(fmt.Fprintf(w, `</svg>`))

	return n, err
}

// encodeCurve draws contiguous runs of defined samples as filled paths.
// Edge-of-range days can have NaN gaps; each run is drawn on its own.
func (img *Daily) encodeCurve(w io.Writer, heights []float64) (int, error) {
	var n int
	var err error
	io := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil {
			err = nexterr
		}
	}

	step := float64(width) / float64(len(heights)-1)
	open := false
	var runStart int
	for i, h := range heights {
		x := int(float64(i) * step)
		if math.IsNaN(h) {
			if open {
				io(fmt.Fprintf(w, `L %d,%d L %d,%d z"/>`, x, height, runStart, height))
				open = false
			}
			continue
		}
		y := heightToY(noaa.Height(h))
		if !open {
			io(fmt.Fprintf(w, `<path class="tide" fill="skyblue" d="M %d,%d `, x, y))
			open = true
			runStart = x
			continue
		}
		io(fmt.Fprintf(w, `L %d,%d `, x, y))
	}
	if open {
		io(fmt.Fprintf(w, `L %d,%d L %d,%d z"/>`, width, height, runStart, height))
	}

	return n, err
}

func heightToY(h noaa.Height) int {
	frac := (float64(h) - minHeight) / (maxHeight - minHeight)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return height - int(frac*height)
}

func (img *Daily) timeToX(t time.Time) int {
	return int(t.Unix()-img.date.Unix()) * width / (60 * 60 * 24)
}
