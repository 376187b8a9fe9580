package noaa

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const MDAPI_URL = "https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi/stations"

// maxSearchResults caps SearchStations so a one-letter query does not dump
// the entire station catalog on the caller.
const maxSearchResults = 20

// ErrStationNotFound is returned when a station id or free-text search
// resolves to nothing.
var ErrStationNotFound = errors.New("station not found")

// mdStation is station metadata on the wire. The metadata API encodes ids as
// strings even though they are numeric.
type mdStation struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

type mdResult struct {
	Stations []mdStation `json:"stations"`
}

// SearchStations resolves free text to tide prediction stations. Matching is
// a case-blind substring test against the station name and state, which is
// how users actually type ("santa cruz", "monterey, ca").
func SearchStations(query string) ([]StationInfo, error) {
	all, err := fetchStationList()
	if err != nil {
		return nil, err
	}
	matches := filterStations(all, query)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrStationNotFound, query)
	}
	return matches, nil
}

// GetStation fetches metadata for a single station by id.
func GetStation(id Station) (StationInfo, error) {
	addr := fmt.Sprintf("%s/%d.json", MDAPI_URL, id)
	resp, err := client.Get(addr)
	if err != nil {
		return StationInfo{}, err
	}
	defer resp.Body.Close()

	var result mdResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return StationInfo{}, err
	}
	if len(result.Stations) == 0 {
		return StationInfo{}, fmt.Errorf("%w: id %d", ErrStationNotFound, id)
	}
	return result.Stations[0].info(), nil
}

func fetchStationList() ([]mdStation, error) {
	addr, err := url.Parse(MDAPI_URL + ".json")
	if err != nil {
		panic(err)
	}
	vals := make(url.Values)
	vals.Add("type", "tidepredictions")
	addr.RawQuery = vals.Encode()

	resp, err := client.Get(addr.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result mdResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Stations, nil
}

func filterStations(all []mdStation, query string) []StationInfo {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	var matches []StationInfo
	for _, st := range all {
		haystack := strings.ToLower(st.Name + ", " + st.State)
		if !strings.Contains(haystack, needle) {
			continue
		}
		matches = append(matches, st.info())
		if len(matches) == maxSearchResults {
			break
		}
	}
	return matches
}

func (m mdStation) info() StationInfo {
	id, err := strconv.Atoi(m.ID)
	if err != nil {
		// Subordinate stations have ids like "TEC4571"; represent them
		// as id 0 so they sort out of favorites naturally.
		id = 0
	}
	return StationInfo{
		ID:    Station(id),
		Name:  m.Name,
		State: m.State,
		Lat:   m.Lat,
		Lng:   m.Lng,
	}
}
