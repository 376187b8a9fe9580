// Package noaa implements queries to NOAA tides and currents services.  Tide
// predictions are requested as a time series per station (see
// PredictionQuery).  A successful query returns a list of predictions with
// time, height, and whether it is high or low.  All times are local to the
// station.  The package also resolves free-text place names to prediction
// stations through the NOAA metadata API.
package noaa
