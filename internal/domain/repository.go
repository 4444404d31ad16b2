package domain

import (
	"context"
	"time"
)

// DataRepository defines the interface for data persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type DataRepository interface {
	// SaveTrafficSample persists one collector observation
	SaveTrafficSample(ctx context.Context, sample TrafficSample) error

	// SavePredictionLog persists a prediction request/response
	SavePredictionLog(ctx context.Context, req PredictionRequest, resp PredictionResponse) error

	// GetTrafficSamples retrieves clean samples in a time range, newest first
	GetTrafficSamples(ctx context.Context, from, to time.Time) ([]TrafficSample, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
