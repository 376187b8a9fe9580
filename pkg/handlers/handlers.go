package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/spencer-p/tidecal/pkg/cache"
	"github.com/spencer-p/tidecal/pkg/metrics"
	"github.com/spencer-p/tidecal/pkg/noaa"
	"github.com/spencer-p/tidecal/pkg/tidecal"
	"github.com/spencer-p/tidecal/pkg/timetricks"

	"github.com/gorilla/mux"
)

const (
	day      = 24 * time.Hour
	cacheTTL = 23 * time.Hour // slightly less than a day so daily clients don't see stale data

	defaultStation = noaa.SantaCruz
)

func Register(r *mux.Router, prefix string, content embed.FS) {
	r.Handle("/", makeCalendarPage(content))
	r.Handle("/list", makeListPage(content))
	r.Handle("/config", makeConfigPage(prefix, content))
	r.Handle("/favorites", makeFavoriteToggle(prefix))
	r.Handle("/api/v1/tides", makeServeTides())
	r.Handle("/api/v1/stations", makeStationSearch())
	r.PathPrefix("/static/").Handler(http.StripPrefix(prefix, http.FileServer(http.FS(content))))
}

// fetchMonth gets predictions covering the month plus one day of padding on
// each side so day-edge curves have something to connect to.
func fetchMonth(station noaa.Station, monthStart time.Time) (noaa.Predictions, error) {
	query := noaa.PredictionQuery{
		Start:    monthStart.Add(-1 * day),
		Duration: time.Duration(timetricks.DaysIn(monthStart)+2) * day,
		Station:  station,
	}
	preds, err := noaa.GetPredictions(&query)
	metrics.ObserveNOAAFetch("predictions", err)
	return preds, err
}

// tidesResponse is the JSON shape of /api/v1/tides.
type tidesResponse struct {
	Station noaa.Station  `json:"station"`
	Month   string        `json:"month"`
	Days    []tidecal.Day `json:"days"`
}

func makeServeTides() http.Handler {
	timeCache := cache.NewTimed(cacheTTL)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// cache based on method and URL, which should encapsulate the query
		key := fmt.Sprintf("%s %s", r.Method, r.URL)

		if cached, ok := timeCache.Get(key); ok {
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		station := stationParam(r)
		monthStart := monthParam(r)

		preds, err := fetchMonth(station, monthStart)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Failed to fetch tide data")
			log.Printf("Failed to fetch tide data: %+v", err)
			return
		}

		days := tidecal.BucketByDay(preds)
		if t, err := strconv.ParseFloat(r.FormValue("threshold"), 64); err == nil {
			tidecal.ApplyThreshold(days, &t)
		}
		days = trimToMonth(days, monthStart)

		resp := tidesResponse{
			Station: station,
			Month:   timetricks.FormatMonth(monthStart),
			Days:    days,
		}

		// duplicate the http response onto a buffer for the cache
		var toCache bytes.Buffer
		mw := io.MultiWriter(w, &toCache)

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(mw).Encode(resp); err != nil {
			log.Printf("Failed to encode JSON result: %+v", err)
			return
		}

		// save the result asynchonously as the cache may block
		go func() {
			timeCache.Set(key, toCache.Bytes())
		}()
	})
}

func makeStationSearch() http.Handler {
	searchCache := cache.NewTimed(cacheTTL)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%s %s", r.Method, r.URL)

		if cached, ok := searchCache.Get(key); ok {
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		query := r.FormValue("q")
		if query == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Missing query")
			return
		}

		results, err := noaa.SearchStations(query)
		metrics.ObserveNOAAFetch("stations", err)
		if errors.Is(err, noaa.ErrStationNotFound) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, "No stations found")
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Failed to search stations")
			log.Printf("Failed to search stations: %+v", err)
			return
		}

		var toCache bytes.Buffer
		mw := io.MultiWriter(w, &toCache)

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(mw).Encode(results); err != nil {
			log.Printf("Failed to encode JSON result: %+v", err)
			return
		}

		go func() {
			searchCache.Set(key, toCache.Bytes())
		}()
	})
}

// stationParam reads the station id from the request, falling back to the
// default station.
func stationParam(r *http.Request) noaa.Station {
	if s := r.FormValue("station"); s != "" {
		if id, err := strconv.Atoi(s); err == nil && id > 0 {
			return noaa.Station(id)
		}
		log.Printf("Ignoring bad station %q", s)
	}
	return defaultStation
}

// monthParam reads a "2006-01" month from the request, falling back to the
// current month.
func monthParam(r *http.Request) time.Time {
	if m := r.FormValue("month"); m != "" {
		parsed, err := timetricks.ParseMonth(m)
		if err == nil {
			return parsed
		}
		log.Printf("Failed to read month %q: %v", m, err)
	}
	return timetricks.MonthStart(time.Now())
}

// trimToMonth drops the padding days fetched around the month's edges.
func trimToMonth(days []tidecal.Day, monthStart time.Time) []tidecal.Day {
	var trimmed []tidecal.Day
	for _, d := range days {
		if d.Date.Month() == monthStart.Month() && d.Date.Year() == monthStart.Year() {
			trimmed = append(trimmed, d)
		}
	}
	return trimmed
}
