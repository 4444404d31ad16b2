package domain

import "time"

// MinSampleDistanceKm is the shortest straight-line trip kept as a training sample
const MinSampleDistanceKm = 0.1

// TrafficSample is one observation of a route's live travel time
type TrafficSample struct {
	Timestamp          time.Time `json:"timestamp"`
	Origin             string    `json:"origin"`
	Destination        string    `json:"destination"`
	OriginCoords       GeoPoint  `json:"origin_coords"`
	DestinationCoords  GeoPoint  `json:"destination_coords"`
	TravelTimeSeconds  int       `json:"travel_time"`
	TrafficTimeSeconds int       `json:"traffic_time"`
	Hour               int       `json:"hour"`
	DayOfWeek          int       `json:"day_of_week"` // 0 = Monday
	DistanceKm         float64   `json:"distance"`
}

// Clean reports whether the sample is usable for training
func (s TrafficSample) Clean() bool {
	return s.TravelTimeSeconds > 0 && s.TrafficTimeSeconds > 0 && s.DistanceKm > MinSampleDistanceKm
}

// MondayFirst converts a time.Weekday to a Monday = 0 index
func MondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// TrafficSamplesResponse wraps persisted samples with metadata
type TrafficSamplesResponse struct {
	Data    []TrafficSample `json:"data"`
	Count   int             `json:"count"`
	Success bool            `json:"success"`
}
