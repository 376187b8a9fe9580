package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "tidecal",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	NOAAFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidecal_noaa_fetches_total",
			Help: "Total NOAA API fetches.",
		},
		[]string{"endpoint", "status"},
	)

	AlertsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidecal_alerts_sent_total",
			Help: "Total threshold alerts delivered.",
		},
		[]string{"status"},
	)

	userRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidecal_user_requests_total",
			Help: "Requests partitioned by whether the visitor has a profile.",
		},
		[]string{"known"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveNOAAFetch counts one call to a NOAA endpoint with its outcome.
func ObserveNOAAFetch(endpoint string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	NOAAFetchesTotal.With(prometheus.Labels{
		"endpoint": endpoint,
		"status":   status,
	}).Inc()
}

// ObserveUserRequest counts a page view, noting whether the session resolved
// to a stored user.
func ObserveUserRequest(userID interface{}) {
	userRequests.With(prometheus.Labels{
		"known": strconv.FormatBool(userID != nil),
	}).Inc()
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Now().Sub(t).Seconds())
				panic(err)
			}
			code := getStatusCode(w)
			ObserveRequestLatency(verb, path, code, time.Now().Sub(t).Seconds())
		}()

		next.ServeHTTP(w, r)
	})
}

func getStatusCode(w http.ResponseWriter) string {
	statusFields, ok := w.Header()["Status-Code"]
	if !ok {
		// Unset, will be set to 200 by stdlib.
		return "200"
	}
	if len(statusFields) < 1 {
		// Not normal behavior.
		return "0"
	}
	return statusFields[0]
}
