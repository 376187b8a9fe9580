// Package alerts notifies users ahead of days whose high tide clears their
// threshold. Each user is notified at most once per station and day; sent
// markers persist in the database so restarts don't re-alert.
package alerts

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/spencer-p/tidecal/pkg/data"
	"github.com/spencer-p/tidecal/pkg/metrics"
	"github.com/spencer-p/tidecal/pkg/noaa"
	"github.com/spencer-p/tidecal/pkg/tidecal"
	"github.com/spencer-p/tidecal/pkg/timetricks"
)

const (
	day = 24 * time.Hour

	// defaultLeadDays applies when a user enabled alerts but never chose
	// a lead window.
	defaultLeadDays = 2
)

// Notification describes one threshold-crossing day for delivery.
type Notification struct {
	User        string    `json:"user"`
	StationID   int       `json:"station_id"`
	StationName string    `json:"station_name"`
	Date        time.Time `json:"date"`
	MaxHeight   float64   `json:"max_height"`
	Threshold   float64   `json:"threshold"`
}

func (n Notification) String() string {
	return fmt.Sprintf("%s: high tide %.1f ft on %s (threshold %.1f ft)",
		n.StationName,
		n.MaxHeight,
		n.Date.Format("Mon Jan 2"),
		n.Threshold)
}

// FetchFunc fetches predictions; swapped out in tests.
type FetchFunc func(q *noaa.PredictionQuery) (noaa.Predictions, error)

// MarkerStore records which notifications were already sent.
type MarkerStore interface {
	Sent(userID uint, stationID int, day string) (bool, error)
	Mark(userID uint, stationID int, day string) error
}

// Notifier scans users' favorite stations for upcoming threshold days.
type Notifier struct {
	DB      *gorm.DB
	Sender  Sender
	Fetch   FetchFunc
	Markers MarkerStore
}

func New(db *gorm.DB, sender Sender) *Notifier {
	return &Notifier{
		DB:      db,
		Sender:  sender,
		Fetch:   noaa.GetPredictions,
		Markers: dbMarkers{db},
	}
}

// Scan walks every alert-enabled user and notifies them about upcoming
// threshold days at their favorite stations. Individual failures are logged
// and skipped; one bad station should not starve the rest of the scan.
func (nt *Notifier) Scan(now time.Time) error {
	var users []data.User
	if r := nt.DB.Preload("Stations").Where("alerts_enabled = ?", true).Find(&users); r.Error != nil {
		return fmt.Errorf("failed to list users: %w", r.Error)
	}

	for _, u := range users {
		nt.scanUser(u, now)
	}
	return nil
}

func (nt *Notifier) scanUser(u data.User, now time.Time) {
	if u.MaxTideThresh == nil {
		// Alerts enabled but nothing to measure against.
		return
	}
	lead := u.AlertLeadDays
	if lead <= 0 {
		lead = defaultLeadDays
	}

	for _, st := range u.Stations {
		preds, err := nt.Fetch(&noaa.PredictionQuery{
			Start:    now,
			Duration: time.Duration(lead+1) * day,
			Station:  noaa.Station(st.StationID),
		})
		metrics.ObserveNOAAFetch("predictions", err)
		if err != nil {
			log.Printf("Failed to fetch station %d for user %d: %v", st.StationID, u.ID, err)
			continue
		}

		days := tidecal.BucketByDay(preds)
		tidecal.ApplyThreshold(days, u.MaxTideThresh)

		for _, d := range tidecal.UpcomingThresholdDays(days, now, lead) {
			nt.notify(u, st, d)
		}
	}
}

func (nt *Notifier) notify(u data.User, st data.SavedStation, d tidecal.Day) {
	key := timetricks.UniqueDay(d.Date)

	sent, err := nt.Markers.Sent(u.ID, st.StationID, key)
	if err != nil {
		log.Printf("Failed to check alert marker: %v", err)
		return
	}
	if sent {
		return
	}

	high, ok := d.MaxHigh()
	if !ok {
		return
	}

	n := Notification{
		User:        u.Name,
		StationID:   st.StationID,
		StationName: st.Name,
		Date:        d.Date,
		MaxHeight:   float64(high),
		Threshold:   *u.MaxTideThresh,
	}
	if err := nt.Sender.Send(n); err != nil {
		metrics.AlertsSentTotal.WithLabelValues("error").Inc()
		log.Printf("Failed to send alert for user %d: %v", u.ID, err)
		return
	}
	metrics.AlertsSentTotal.WithLabelValues("ok").Inc()

	// Mark after the send; a failed send retries on the next scan.
	if err := nt.Markers.Mark(u.ID, st.StationID, key); err != nil {
		log.Printf("Failed to record alert marker: %v", err)
	}
}

type dbMarkers struct {
	db *gorm.DB
}

func (m dbMarkers) Sent(userID uint, stationID int, day string) (bool, error) {
	return data.AlertSent(m.db, userID, stationID, day)
}

func (m dbMarkers) Mark(userID uint, stationID int, day string) error {
	return data.MarkAlertSent(m.db, userID, stationID, day)
}
