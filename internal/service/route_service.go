package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smartcity/routeplanner/internal/domain"
	"github.com/smartcity/routeplanner/internal/polyline"
	"github.com/smartcity/routeplanner/pkg/utils"
)

const predictionLogTimeout = 5 * time.Second

// RouteService plans a route: directions, geometry, then the predicted travel time
type RouteService struct {
	maps      MapsProvider
	predictor Predictor
	repo      DataRepository
	logger    *zap.Logger

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewRouteService creates a new route service
func NewRouteService(
	maps MapsProvider,
	predictor Predictor,
	repo DataRepository,
	logger *zap.Logger,
) *RouteService {
	return &RouteService{
		maps:      maps,
		predictor: predictor,
		repo:      repo,
		logger:    logger,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *RouteService) WaitBackground() {
	s.wgBg.Wait()
}

// PlanRoute resolves a route between two coordinates. Directions must succeed
// before the prediction service is called; a failed or empty prediction only
// marks the predicted time unavailable.
func (s *RouteService) PlanRoute(ctx context.Context, req domain.RouteRequest) (domain.RoutePlan, error) {
	directions, err := s.maps.Directions(ctx, req.OriginCoords.String(), req.DestinationCoords.String())
	if err != nil {
		return domain.RoutePlan{}, fmt.Errorf("route: directions: %w", err)
	}

	path, err := polyline.Decode(directions.EncodedPath)
	if err != nil {
		return domain.RoutePlan{}, fmt.Errorf("route: overview geometry: %w", err)
	}

	predReq := domain.PredictionRequest{
		Origin:            req.Origin,
		Destination:       req.Destination,
		OriginCoords:      req.OriginCoords,
		DestinationCoords: req.DestinationCoords,
	}

	predicted := domain.MinutesUnavailable
	prediction, err := s.predictor.Predict(ctx, predReq)
	if err != nil {
		s.logger.Warn("traffic prediction unavailable",
			zap.String("origin", req.Origin),
			zap.String("destination", req.Destination),
			zap.Error(err),
		)
	} else {
		predicted = prediction.Minutes()
		s.savePredictionLog(predReq, prediction)
	}

	return domain.RoutePlan{
		Origin:      req.Origin,
		Destination: req.Destination,
		EncodedPath: directions.EncodedPath,
		Path:        path,
		LengthKm:    utils.RoundTo(polyline.Length(path), 3),
		Summary: domain.RouteSummary{
			DurationText:          directions.DurationText,
			DurationInTrafficText: directions.DurationInTrafficText,
			PredictedMinutes:      predicted,
		},
	}, nil
}

// savePredictionLog persists the prediction asynchronously (tracked for graceful shutdown)
func (s *RouteService) savePredictionLog(req domain.PredictionRequest, resp domain.PredictionResponse) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), predictionLogTimeout)
		defer cancel()
		if err := s.repo.SavePredictionLog(bgCtx, req, resp); err != nil {
			s.logger.Error("failed to save prediction log", zap.Error(err))
		}
	}()
}
