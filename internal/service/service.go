package service

import (
	"context"
	"errors"

	"github.com/smartcity/routeplanner/internal/domain"
)

// DataRepository is re-exported from domain for convenience
type DataRepository = domain.DataRepository

var (
	// ErrNoRoute is returned when the provider finds no route between the endpoints
	ErrNoRoute = errors.New("no route found")

	// ErrMalformedResponse is returned when a provider response lacks required fields
	ErrMalformedResponse = errors.New("malformed provider response")
)

// MapsProvider is the geocoding/routing provider
type MapsProvider interface {
	Autocomplete(ctx context.Context, input string) ([]domain.PlaceCandidate, error)
	PlaceDetails(ctx context.Context, placeID string) (domain.GeoPoint, error)
	Directions(ctx context.Context, origin, destination string) (domain.Directions, error)
}

// Predictor estimates travel time for a route
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResponse, error)
}
