package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DurationUnavailable is shown when the provider omits duration_in_traffic
const DurationUnavailable = "N/A"

// Directions holds the first route and first leg of a directions response
type Directions struct {
	EncodedPath              string   `json:"encoded_path"`
	DurationText             string   `json:"duration_text"`
	DurationInTrafficText    string   `json:"duration_in_traffic_text"`
	DurationSeconds          int      `json:"duration_seconds"`
	DurationInTrafficSeconds int      `json:"duration_in_traffic_seconds"`
	DistanceMeters           int      `json:"distance_meters"`
	StartLocation            GeoPoint `json:"start_location"`
	EndLocation              GeoPoint `json:"end_location"`
}

// PredictedMinutes is either a whole number of minutes or unavailable.
// It marshals to a JSON number or the string "unavailable".
type PredictedMinutes struct {
	Minutes   int
	Available bool
}

// MinutesUnavailable is the zero PredictedMinutes
var MinutesUnavailable = PredictedMinutes{}

const unavailableLabel = "unavailable"

// Minutes returns an available prediction
func Minutes(m int) PredictedMinutes {
	return PredictedMinutes{Minutes: m, Available: true}
}

func (p PredictedMinutes) String() string {
	if !p.Available {
		return unavailableLabel
	}
	return fmt.Sprintf("%d minutes", p.Minutes)
}

func (p PredictedMinutes) MarshalJSON() ([]byte, error) {
	if !p.Available {
		return json.Marshal(unavailableLabel)
	}
	return json.Marshal(p.Minutes)
}

func (p *PredictedMinutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.HasPrefix(data, []byte(`"`)) {
		*p = MinutesUnavailable
		return nil
	}
	var m int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("predicted minutes: %w", err)
	}
	*p = Minutes(m)
	return nil
}

// RouteSummary is what the client shows after a route is planned
type RouteSummary struct {
	DurationText          string           `json:"duration_text"`
	DurationInTrafficText string           `json:"duration_in_traffic_text"`
	PredictedMinutes      PredictedMinutes `json:"predicted_minutes"`
}

// Notice renders the summary as the traffic information message
func (s RouteSummary) Notice() string {
	return fmt.Sprintf(
		"Estimated time: %s\nTime with traffic: %s\nPredicted Traffic Time (AI): %s",
		s.DurationText, s.DurationInTrafficText, s.PredictedMinutes,
	)
}

// RouteRequest carries both endpoints as typed text and resolved coordinates
type RouteRequest struct {
	Origin            string   `json:"origin"`
	Destination       string   `json:"destination"`
	OriginCoords      GeoPoint `json:"originCoords"`
	DestinationCoords GeoPoint `json:"destinationCoords"`
}

// RoutePlan is a planned route with its decoded geometry
type RoutePlan struct {
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	EncodedPath string       `json:"encoded_path"`
	Path        []GeoPoint   `json:"path"`
	LengthKm    float64      `json:"length_km"`
	Summary     RouteSummary `json:"summary"`
}
