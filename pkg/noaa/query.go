package noaa

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	NOAA_URL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	TIME_FMT = "20060102"
)

// ErrNoData is returned when NOAA has no predictions for a query, most
// commonly because the station id does not exist.
var ErrNoData = errors.New("no prediction data for station")

// client is shared by all queries. NOAA can be slow; a request that takes
// longer than this is not worth waiting on.
var client = &http.Client{Timeout: 30 * time.Second}

// GetPredictions fetches tide predictions for the query's station and time
// window. There is exactly one attempt; the caller owns any error.
func GetPredictions(q *PredictionQuery) (Predictions, error) {
	var result predictionResult

	resp, err := client.Get(q.url().String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		if strings.Contains(result.Error.Message, "No Predictions data") {
			return nil, fmt.Errorf("%w %d", ErrNoData, q.Station)
		}
		return nil, fmt.Errorf("NOAA: %s", result.Error.Message)
	}
	if len(result.Predictions) == 0 {
		return nil, fmt.Errorf("%w %d", ErrNoData, q.Station)
	}

	return result.Predictions, nil
}

func (q *PredictionQuery) url() *url.URL {
	addr, err := url.Parse(NOAA_URL)
	if err != nil {
		// The URL is a compile-time constant.
		panic(err)
	}

	vals := make(url.Values)
	vals.Add("begin_date", q.Start.Format(TIME_FMT))
	vals.Add("end_date", q.Start.Add(q.Duration).Format(TIME_FMT))
	vals.Add("station", fmt.Sprintf("%d", q.Station))
	vals.Add("product", "predictions")
	vals.Add("datum", "MLLW")
	vals.Add("time_zone", "lst_ldt")
	vals.Add("interval", "hilo")
	vals.Add("units", "english")
	vals.Add("format", "json")
	addr.RawQuery = vals.Encode()

	return addr
}
