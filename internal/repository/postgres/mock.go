package postgres

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smartcity/routeplanner/internal/domain"
)

// PredictionLog is one prediction kept by MockRepository
type PredictionLog struct {
	Request  domain.PredictionRequest
	Response domain.PredictionResponse
}

// MockRepository implements domain.DataRepository in memory for testing/demo mode
type MockRepository struct {
	mu          sync.Mutex
	samples     []domain.TrafficSample
	predictions []PredictionLog
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveTrafficSample keeps the sample in memory
func (r *MockRepository) SaveTrafficSample(ctx context.Context, data domain.TrafficSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, data)
	return nil
}

// GetTrafficSamples returns clean in-memory samples in range, newest first
func (r *MockRepository) GetTrafficSamples(ctx context.Context, from, to time.Time) ([]domain.TrafficSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var results []domain.TrafficSample
	for _, s := range r.samples {
		if s.Timestamp.Before(from) || s.Timestamp.After(to) || !s.Clean() {
			continue
		}
		results = append(results, s)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	return results, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

// SavePredictionLog keeps the prediction in memory
func (r *MockRepository) SavePredictionLog(ctx context.Context, req domain.PredictionRequest, resp domain.PredictionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = append(r.predictions, PredictionLog{Request: req, Response: resp})
	return nil
}

// PredictionLogs returns a copy of the saved predictions
func (r *MockRepository) PredictionLogs() []PredictionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PredictionLog(nil), r.predictions...)
}
