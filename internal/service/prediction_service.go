package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smartcity/routeplanner/internal/domain"
)

// PredictionService handles communication with the Python traffic model
type PredictionService struct {
	endpoint   string
	httpClient *http.Client
}

// NewPredictionService creates a new prediction client for the given endpoint URL
func NewPredictionService(endpoint string, timeout time.Duration) *PredictionService {
	return &PredictionService{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict asks the model for the expected travel time of a route.
// A reply without predicted_traffic_time is not an error; the response simply
// carries no value.
func (s *PredictionService) Predict(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("prediction: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("prediction: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("prediction: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PredictionResponse{}, fmt.Errorf("prediction: service returned status %d", resp.StatusCode)
	}

	var prediction domain.PredictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("prediction: failed to decode response: %w", err)
	}

	return prediction, nil
}
