package noaa

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const predTimeFormat = "2006-01-02 15:04"

// Prediction holds a single tide event prediction.
type Prediction struct {
	// Local time of tide prediction
	Time Time `json:"t"`
	// Height in feet above MLLW
	Height Height `json:"v"`
	// High or Low tide, "H" or "L" when encoded
	Type Tide `json:"type"`
}

// T unwraps the prediction's time as a standard time.Time.
func (p Prediction) T() time.Time {
	return time.Time(p.Time)
}

// Verify the custom types can be unmarshaled
var _ json.Unmarshaler = &Time{}
var _ json.Unmarshaler = new(Height)
var _ json.Unmarshaler = new(Tide)

// Predictions is a time series of Prediction.
type Predictions []Prediction

// predictionResult is the envelope returned by the NOAA API.
type predictionResult struct {
	Predictions Predictions `json:"predictions"`
	Error       *apiError   `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// PredictionQuery is used to query tide data at a station in a given time
// window; see GetPredictions.
type PredictionQuery struct {
	Start    time.Time
	Duration time.Duration
	Station  Station
}

// Station is a NOAA tide prediction station id.
type Station int

const (
	// SantaCruz is the default station when a user has not picked one.
	SantaCruz Station = 9413745
)

// StationInfo is prediction station metadata as returned by the NOAA
// metadata API.
type StationInfo struct {
	ID    Station `json:"id"`
	Name  string  `json:"name"`
	State string  `json:"state,omitempty"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

func (s StationInfo) String() string {
	if s.State == "" {
		return fmt.Sprintf("%s (%d)", s.Name, s.ID)
	}
	return fmt.Sprintf("%s, %s (%d)", s.Name, s.State, s.ID)
}

type Time time.Time

func (t *Time) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("prediction time %q not string: %w", buf, err)
	}
	parsed, err := time.ParseInLocation(predTimeFormat, s, time.Local)
	if err != nil {
		return fmt.Errorf("prediction time %q not in fmt %q: %w", s, predTimeFormat, err)
	}
	*t = Time(parsed)
	return nil
}

type Height float64

func (h *Height) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("water height %q not string: %w", buf, err)
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("water height %q not a float: %w", s, err)
	}
	*h = Height(parsed)
	return nil
}

type Tide uint

const (
	HighTide Tide = iota
	LowTide
)

func (t Tide) Valid() bool {
	return t == HighTide || t == LowTide
}

func (t *Tide) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("tide %q not a string: %w", buf, err)
	}
	switch s {
	case "H":
		*t = HighTide
	case "L":
		*t = LowTide
	default:
		return fmt.Errorf("invalid tide type %q", s)
	}
	return nil
}

func (t Tide) String() string {
	switch t {
	case HighTide:
		return "H"
	case LowTide:
		return "L"
	default:
		return "invalid"
	}
}

func (p Prediction) String() string {
	return fmt.Sprintf("{t: %s, v: %f, type: %s}",
		time.Time(p.Time).Format(time.RFC822),
		p.Height,
		p.Type.String())
}
