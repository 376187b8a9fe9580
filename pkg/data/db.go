package data

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// User holds a visitor's preferences. The id rides in the session cookie;
// everything else lives here.
type User struct {
	gorm.Model
	Name          string
	MaxTideThresh *float64
	AlertsEnabled bool
	AlertLeadDays int
	LastSeen      time.Time
	Stations      []SavedStation
}

// SavedStation is a favorited tide station. Uniqueness on (user, station)
// makes the favorite toggle idempotent.
type SavedStation struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex:idx_user_station"`
	StationID int    `gorm:"uniqueIndex:idx_user_station"`
	Name      string
}

// SentAlert records that a user was already notified about a station's
// threshold day, so they are notified at most once per (user, station, day).
type SentAlert struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex:idx_sent_alert"`
	StationID int    `gorm:"uniqueIndex:idx_sent_alert"`
	Day       string `gorm:"uniqueIndex:idx_sent_alert"`
}

func PostgresFromEnvOrDie() *gorm.DB {
	pw := os.Getenv("PGPASSWORD")
	host := os.Getenv("PGHOST")
	port := os.Getenv("PGPORT")
	dsn := fmt.Sprintf("host=%s user=postgres password=%s dbname=tidecal port=%s sslmode=disable TimeZone=America/Los_Angeles",
		host,
		pw,
		port)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect to database")
	}
	db.AutoMigrate(&User{}, &SavedStation{}, &SentAlert{})
	return db
}

// ToggleStation adds the station to the user's favorites, or removes it if
// already present. Returns true if the station is now a favorite.
func ToggleStation(db *gorm.DB, userID uint, stationID int, name string) (bool, error) {
	var existing SavedStation
	r := db.Where("user_id = ? AND station_id = ?", userID, stationID).First(&existing)
	if r.Error == nil {
		if tx := db.Unscoped().Delete(&existing); tx.Error != nil {
			return true, tx.Error
		}
		return false, nil
	}
	if !errors.Is(r.Error, gorm.ErrRecordNotFound) {
		return false, r.Error
	}

	saved := SavedStation{UserID: userID, StationID: stationID, Name: name}
	if tx := db.Create(&saved); tx.Error != nil {
		return false, tx.Error
	}
	return true, nil
}

// Favorites lists the user's saved stations, oldest first.
func Favorites(db *gorm.DB, userID uint) ([]SavedStation, error) {
	var stations []SavedStation
	r := db.Where("user_id = ?", userID).Order("created_at").Find(&stations)
	return stations, r.Error
}

// AlertSent reports whether a (user, station, day) marker already exists.
func AlertSent(db *gorm.DB, userID uint, stationID int, day string) (bool, error) {
	var count int64
	r := db.Model(&SentAlert{}).
		Where("user_id = ? AND station_id = ? AND day = ?", userID, stationID, day).
		Count(&count)
	return count > 0, r.Error
}

// MarkAlertSent records the dedup marker after a successful send.
func MarkAlertSent(db *gorm.DB, userID uint, stationID int, day string) error {
	return db.Create(&SentAlert{UserID: userID, StationID: stationID, Day: day}).Error
}
