package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartcity/routeplanner/internal/domain"
	"github.com/smartcity/routeplanner/pkg/utils"
)

// DefaultCollectInterval is how often the collector samples every route
const DefaultCollectInterval = 5 * time.Minute

const routeSeparator = "->"

// RoutePair is one origin/destination pair sampled by the collector
type RoutePair struct {
	Origin      string
	Destination string
}

// LoadRoutePairs reads "origin -> destination" lines. Lines without the
// separator are skipped.
func LoadRoutePairs(r io.Reader) ([]RoutePair, error) {
	var pairs []RoutePair
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		origin, destination, ok := strings.Cut(scanner.Text(), routeSeparator)
		if !ok {
			continue
		}
		pairs = append(pairs, RoutePair{
			Origin:      strings.TrimSpace(origin),
			Destination: strings.TrimSpace(destination),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("collector: failed to read routes: %w", err)
	}
	return pairs, nil
}

// TrafficCollector periodically records live travel times for a fixed set of
// routes. The stored samples are the training data of the prediction model.
type TrafficCollector struct {
	maps     MapsProvider
	repo     DataRepository
	routes   []RoutePair
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewTrafficCollector creates a new collector
func NewTrafficCollector(maps MapsProvider, repo DataRepository, routes []RoutePair, interval time.Duration, logger *zap.Logger) *TrafficCollector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	return &TrafficCollector{
		maps:     maps,
		repo:     repo,
		routes:   routes,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run samples all routes immediately and then once per interval until ctx is done
func (c *TrafficCollector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("traffic collector started",
		zap.Int("routes", len(c.routes)),
		zap.Duration("interval", c.interval),
	)

	for {
		stored := c.CollectOnce(ctx)
		c.logger.Info("traffic samples collected", zap.Int("stored", stored))

		select {
		case <-ctx.Done():
			c.logger.Info("traffic collector stopped")
			return
		case <-ticker.C:
		}
	}
}

// CollectOnce samples every route and returns how many samples were stored.
// Failed lookups and unclean samples are skipped.
func (c *TrafficCollector) CollectOnce(ctx context.Context) int {
	stored := 0
	for _, route := range c.routes {
		if ctx.Err() != nil {
			break
		}

		sample, err := c.sample(ctx, route)
		if err != nil {
			c.logger.Warn("failed to sample route",
				zap.String("origin", route.Origin),
				zap.String("destination", route.Destination),
				zap.Error(err),
			)
			continue
		}
		if !sample.Clean() {
			c.logger.Debug("dropping unclean sample",
				zap.String("origin", route.Origin),
				zap.String("destination", route.Destination),
				zap.Int("travel_time", sample.TravelTimeSeconds),
				zap.Float64("distance_km", sample.DistanceKm),
			)
			continue
		}
		if err := c.repo.SaveTrafficSample(ctx, sample); err != nil {
			c.logger.Error("failed to save traffic sample", zap.Error(err))
			continue
		}
		stored++
	}
	return stored
}

func (c *TrafficCollector) sample(ctx context.Context, route RoutePair) (domain.TrafficSample, error) {
	directions, err := c.maps.Directions(ctx, route.Origin, route.Destination)
	if err != nil {
		return domain.TrafficSample{}, err
	}

	now := c.now()
	start, end := directions.StartLocation, directions.EndLocation
	return domain.TrafficSample{
		Timestamp:          now,
		Origin:             route.Origin,
		Destination:        route.Destination,
		OriginCoords:       start,
		DestinationCoords:  end,
		TravelTimeSeconds:  directions.DurationSeconds,
		TrafficTimeSeconds: directions.DurationInTrafficSeconds,
		Hour:               now.Hour(),
		DayOfWeek:          domain.MondayFirst(now.Weekday()),
		DistanceKm:         utils.Haversine(start.Latitude, start.Longitude, end.Latitude, end.Longitude),
	}, nil
}
