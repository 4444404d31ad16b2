package domain

import "strconv"

// GeoPoint is a latitude/longitude pair in degrees
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the point as "lat,lng", the waypoint form the directions API expects
func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// PlaceCandidate is one autocomplete suggestion
type PlaceCandidate struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// DetroitCenter is the initial map region of the client app
const (
	DetroitCenterLat = 42.3314
	DetroitCenterLon = -83.0458
)
