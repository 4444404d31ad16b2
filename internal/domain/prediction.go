package domain

import "math"

// PredictionRequest is the body posted to the traffic prediction service
type PredictionRequest struct {
	Origin            string   `json:"origin"`
	Destination       string   `json:"destination"`
	OriginCoords      GeoPoint `json:"originCoords"`
	DestinationCoords GeoPoint `json:"destinationCoords"`
}

// PredictionResponse is the prediction service reply.
// PredictedTrafficTime is in seconds and nil when the service omitted it.
type PredictionResponse struct {
	PredictedTrafficTime *float64      `json:"predicted_traffic_time,omitempty"`
	RealTimeData         *RealTimeData `json:"real_time_data,omitempty"`
}

// RealTimeData echoes the live provider figures the prediction was based on
type RealTimeData struct {
	TravelTime  float64 `json:"travel_time"`
	TrafficTime float64 `json:"traffic_time"`
	Distance    float64 `json:"distance"`
}

// MaxPredictedMinutes bounds a usable prediction; larger values are reported as unavailable
const MaxPredictedMinutes = math.MaxInt32

// Minutes converts the predicted seconds to whole minutes, floored at zero
func (r PredictionResponse) Minutes() PredictedMinutes {
	if r.PredictedTrafficTime == nil {
		return MinutesUnavailable
	}
	v := *r.PredictedTrafficTime
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MinutesUnavailable
	}
	m := math.Round(v / 60)
	if m > MaxPredictedMinutes {
		return MinutesUnavailable
	}
	return Minutes(int(math.Max(0, m)))
}
