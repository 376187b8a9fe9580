package handlers

import (
	"bytes"
	"crypto/sha1"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/spencer-p/tidecal/pkg/data"
	"github.com/spencer-p/tidecal/pkg/metrics"
	"github.com/spencer-p/tidecal/pkg/noaa"
	"github.com/spencer-p/tidecal/pkg/sunset"
	"github.com/spencer-p/tidecal/pkg/tidecal"
	"github.com/spencer-p/tidecal/pkg/timetricks"
	"github.com/spencer-p/tidecal/pkg/visualize"
	"golang.org/x/crypto/pbkdf2"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"
)

const (
	sessionName       = "tidecal"
	sessionLastViewed = "last-viewed-referrer"
	userID            = "userid"
	// See https://developer.chrome.com/blog/cookie-max-age-expires.
	defaultMaxAge = 60 * 60 * 24 * 400 // 400 days in seconds.

	titleFormat = "January 2006"
)

var (
	store = &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs(
			getSessionKey(),
			getEncryptionKey(),
		),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			Secure:   true,
			HttpOnly: true,
		},
	}
	db = data.PostgresFromEnvOrDie()
)

func init() {
	store.MaxAge(defaultMaxAge)
}

// DB exposes the shared database handle so main can wire the notifier to
// the same connection the handlers use.
func DB() *gorm.DB {
	return db
}

// DayCell is one calendar cell: nil Day for out-of-month padding.
type DayCell struct {
	Day       *tidecal.Day
	TideImage template.HTML
}

type CalendarInput struct {
	Station    noaa.StationInfo
	Title      string
	Weeks      [][]DayCell
	NextMonth  string
	PrevMonth  string
	Favorites  []data.SavedStation
	IsFavorite bool
	User       *data.User
}

type ListInput struct {
	Station   noaa.StationInfo
	Title     string
	Days      []tidecal.Day
	NextMonth string
	PrevMonth string
	Favorites []data.SavedStation
	User      *data.User
}

// monthView is everything the calendar and list pages have in common.
type monthView struct {
	info       noaa.StationInfo
	monthStart time.Time
	preds      noaa.Predictions
	days       []tidecal.Day
	user       *data.User
	favorites  []data.SavedStation
}

// makeCalendarPage serves the month calendar fully rendered on the server.
func makeCalendarPage(content embed.FS) http.HandlerFunc {
	calendarTemplate := template.Must(template.ParseFS(content, "static/calendar.template.html"))

	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, sessionName)
		metrics.ObserveUserRequest(session.Values[userID])
		session.Values[sessionLastViewed] = r.URL.String()
		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}

		view, err := loadMonthView(r, session)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Failed to fetch tide data")
			log.Printf("Failed to fetch tide data: %+v", err)
			return
		}

		grid := tidecal.Month(view.monthStart.Year(), view.monthStart.Month(), view.days)

		// Sun events cover the padded fetch window so every cell can
		// shade its daylight.
		sunevents := sunset.GetSunEvents(
			view.monthStart.Add(-1*day),
			time.Duration(timetricks.DaysIn(view.monthStart)+2)*day,
			sunset.PlaceForStation(view.info))
		img := visualize.NewDaily(view.preds, sunevents, thresholdOf(view.user))

		weeks := make([][]DayCell, len(grid.Weeks))
		for i, week := range grid.Weeks {
			weeks[i] = make([]DayCell, len(week))
			for j, d := range week {
				weeks[i][j].Day = d
				if d == nil || len(d.Events) == 0 {
					continue
				}
				weeks[i][j].TideImage = template.HTML(imgToString(img, d.Date))
			}
		}

		tinput := CalendarInput{
			Station:    view.info,
			Title:      view.monthStart.Format(titleFormat),
			Weeks:      weeks,
			NextMonth:  timetricks.FormatMonth(timetricks.NextMonth(view.monthStart)),
			PrevMonth:  timetricks.FormatMonth(timetricks.PrevMonth(view.monthStart)),
			Favorites:  view.favorites,
			IsFavorite: isFavorite(view.favorites, view.info.ID),
			User:       view.user,
		}

		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if err := calendarTemplate.Execute(w, tinput); err != nil {
			log.Printf("Failed to execute template: %v", err)
		}
	}
}

// makeListPage serves the same month as a flat list of days.
func makeListPage(content embed.FS) http.HandlerFunc {
	listTemplate := template.Must(template.ParseFS(content, "static/list.template.html"))

	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, sessionName)
		metrics.ObserveUserRequest(session.Values[userID])
		session.Values[sessionLastViewed] = r.URL.String()
		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}

		view, err := loadMonthView(r, session)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Failed to fetch tide data")
			log.Printf("Failed to fetch tide data: %+v", err)
			return
		}

		tinput := ListInput{
			Station:   view.info,
			Title:     view.monthStart.Format(titleFormat),
			Days:      trimToMonth(view.days, view.monthStart),
			NextMonth: timetricks.FormatMonth(timetricks.NextMonth(view.monthStart)),
			PrevMonth: timetricks.FormatMonth(timetricks.PrevMonth(view.monthStart)),
			Favorites: view.favorites,
			User:      view.user,
		}

		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if err := listTemplate.Execute(w, tinput); err != nil {
			log.Printf("Failed to execute template: %v", err)
		}
	}
}

func loadMonthView(r *http.Request, session *sessions.Session) (monthView, error) {
	view := monthView{
		monthStart: monthParam(r),
		user:       userFromSession(session),
	}

	if view.user != nil {
		favs, err := data.Favorites(db, view.user.ID)
		if err != nil {
			log.Printf("Failed to list favorites for user %d: %v", view.user.ID, err)
		}
		view.favorites = favs
	}

	station := stationForView(r, view.favorites)

	// Station metadata failing is survivable; the page just loses its
	// name and daylight shading.
	info, err := noaa.GetStation(station)
	metrics.ObserveNOAAFetch("station", err)
	if err != nil {
		log.Printf("Failed to fetch station %d metadata: %v", station, err)
		info = noaa.StationInfo{ID: station, Name: fmt.Sprintf("Station %d", station)}
	}
	view.info = info

	preds, err := fetchMonth(station, view.monthStart)
	if err != nil {
		return view, fmt.Errorf("failed to fetch from NOAA: %w", err)
	}
	view.preds = preds

	view.days = tidecal.BucketByDay(preds)
	tidecal.ApplyThreshold(view.days, thresholdOf(view.user))

	return view, nil
}

// stationForView picks the station to show: explicit request parameter,
// then the user's first favorite, then the default.
func stationForView(r *http.Request, favorites []data.SavedStation) noaa.Station {
	if s := r.FormValue("station"); s != "" {
		if id, err := strconv.Atoi(s); err == nil && id > 0 {
			return noaa.Station(id)
		}
		log.Printf("Ignoring bad station %q", s)
	}
	if len(favorites) > 0 {
		return noaa.Station(favorites[0].StationID)
	}
	return defaultStation
}

func imgToString(img *visualize.Daily, t time.Time) string {
	img.SetDate(t)
	var b bytes.Buffer
	img.Encode(&b)
	return b.String()
}

func isFavorite(favorites []data.SavedStation, id noaa.Station) bool {
	for _, f := range favorites {
		if noaa.Station(f.StationID) == id {
			return true
		}
	}
	return false
}

// userFromSession loads the stored user named by the session, if any. The db
// lookup can fail here, and that's fine; the page falls back to defaults.
func userFromSession(s *sessions.Session) *data.User {
	id, ok := s.Values[userID].(uint)
	if !ok {
		return nil
	}

	var user data.User
	if r := db.First(&user, id); r.Error != nil {
		log.Printf("Failed to find user %v: %v", id, r.Error)
		return nil
	}

	// Log the time since we last saw the user.
	if !user.LastSeen.IsZero() {
		sinceLastUpdate := time.Since(user.LastSeen)
		log.Printf("User %d (%q) was last seen %s ago", id, user.Name, sinceLastUpdate)
	}
	user.LastSeen = time.Now()
	db.Save(&user)

	return &user
}

func thresholdOf(user *data.User) *float64 {
	if user == nil {
		return nil
	}
	return user.MaxTideThresh
}

// ensureUser returns the session's user, creating a row for first-time
// writers so preferences have somewhere to live.
func ensureUser(session *sessions.Session) (*data.User, error) {
	if user := userFromSession(session); user != nil {
		return user, nil
	}
	user := data.User{LastSeen: time.Now()}
	if tx := db.Save(&user); tx.Error != nil {
		return nil, tx.Error
	}
	session.Values[userID] = user.ID
	return &user, nil
}

func makeFavoriteToggle(redirectPrefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, sessionName)
		metrics.ObserveUserRequest(session.Values[userID])

		if r.Method != "POST" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			msg := fmt.Sprintf("Failed to parse form: %v", err)
			log.Println(msg)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, msg)
			return
		}

		stationID, err := strconv.Atoi(r.PostForm.Get("station"))
		if err != nil || stationID <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Bad station id")
			return
		}
		name := r.PostForm.Get("name")

		user, err := ensureUser(session)
		if err != nil {
			msg := fmt.Sprintf("Failed to save preferences: %v", err)
			log.Println(msg)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, msg)
			return
		}

		nowFavorite, err := data.ToggleStation(db, user.ID, stationID, name)
		if err != nil {
			msg := fmt.Sprintf("Failed to save preferences: %v", err)
			log.Println(msg)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, msg)
			return
		}
		log.Printf("User %d favorite station %d: %v", user.ID, stationID, nowFavorite)

		session.Save(r, w)
		redirectBack(w, r, session, redirectPrefix)
	}
}

func makeConfigPage(redirectPrefix string, content embed.FS) http.HandlerFunc {
	configTemplate := template.Must(template.ParseFS(content, "static/config.template.html"))

	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, sessionName)
		metrics.ObserveUserRequest(session.Values[userID])

		if r.Method == "GET" {
			session.Save(r, w)
			user := userFromSession(session)
			var favorites []data.SavedStation
			if user != nil {
				favorites, _ = data.Favorites(db, user.ID)
			}
			if err := configTemplate.Execute(w, map[string]any{
				"User":      user,
				"Favorites": favorites,
			}); err != nil {
				log.Printf("Failed to write configTemplate: %v", err)
			}
			return
		}
		// The remainder of this function assumes method is POST.
		if r.Method != "POST" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := r.ParseForm(); err != nil {
			msg := fmt.Sprintf("Failed to parse form: %v", err)
			log.Println(msg)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, msg)
			return
		}

		user, err := ensureUser(session)
		if err != nil {
			msg := fmt.Sprintf("Failed to save preferences: %v", err)
			log.Println(msg)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, msg)
			return
		}

		if f, err := strconv.ParseFloat(r.PostForm.Get("max_tide"), 64); err == nil {
			user.MaxTideThresh = &f
		} else {
			user.MaxTideThresh = nil
		}
		user.AlertsEnabled = r.PostForm.Get("alerts_enabled") == "on"
		if n, err := strconv.Atoi(r.PostForm.Get("lead_days")); err == nil && n > 0 {
			user.AlertLeadDays = n
		}
		user.Name = r.PostForm.Get("name")
		user.LastSeen = time.Now()

		if tx := db.Save(user); tx.Error != nil {
			msg := fmt.Sprintf("Failed to save preferences: %v", tx.Error)
			log.Println(msg)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, msg)
			return
		}
		session.Save(r, w)

		redirectBack(w, r, session, redirectPrefix)
	}
}

// redirectBack sends the user to whatever they saw last, or the index.
func redirectBack(w http.ResponseWriter, r *http.Request, session *sessions.Session, prefix string) {
	referredFrom, ok := session.Values[sessionLastViewed].(string)
	if !ok || referredFrom == "/config" {
		referredFrom = "/"
	}
	redirectTo := pathJoinPreservePrefix(prefix, referredFrom)
	http.Redirect(w, r, redirectTo, http.StatusFound)
}

func pathJoinPreservePrefix(prefix string, suffix string) string {
	trimmedPrefix := path.Join(prefix, "")
	result := path.Join(prefix, suffix)
	if result == trimmedPrefix {
		return prefix
	}
	return result
}

// getSessionKey returns a key to authenticate session cookies defined in the
// environment.
// If it is not set, it uses a compile-time default.
func getSessionKey() []byte {
	defaultKey := []byte("deadbeef")
	if key := os.Getenv("SESSION_KEY"); key != "" {
		return []byte(key)
	}
	return defaultKey
}

func getEncryptionKey() []byte {
	password := "deadbeef"
	if fromEnv := os.Getenv("ENCRYPTION_KEY"); fromEnv != "" {
		password = fromEnv
	}
	return pbkdf2.Key([]byte(password), []byte{}, 4096, 32, sha1.New)
}
