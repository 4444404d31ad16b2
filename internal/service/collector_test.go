package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/smartcity/routeplanner/internal/domain"
	"github.com/smartcity/routeplanner/internal/repository/postgres"
)

func TestLoadRoutePairs(t *testing.T) {
	input := `Detroit, MI -> Ann Arbor, MI
# comment without separator

Dearborn->Troy
`
	pairs, err := LoadRoutePairs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []RoutePair{
		{Origin: "Detroit, MI", Destination: "Ann Arbor, MI"},
		{Origin: "Dearborn", Destination: "Troy"},
	}, pairs)
}

type routeMaps struct {
	fakeMaps
	byOrigin map[string]domain.Directions
}

func (m *routeMaps) Directions(ctx context.Context, origin, destination string) (domain.Directions, error) {
	d, ok := m.byOrigin[origin]
	if !ok {
		return domain.Directions{}, ErrNoRoute
	}
	return d, nil
}

func TestTrafficCollector_CollectOnce(t *testing.T) {
	maps := &routeMaps{byOrigin: map[string]domain.Directions{
		"Detroit": {
			DurationSeconds:          2460,
			DurationInTrafficSeconds: 3120,
			StartLocation:            domain.GeoPoint{Latitude: 42.3314, Longitude: -83.0458},
			EndLocation:              domain.GeoPoint{Latitude: 42.2808, Longitude: -83.743},
		},
		// start and end a few meters apart
		"Parking lot": {
			DurationSeconds:          60,
			DurationInTrafficSeconds: 60,
			StartLocation:            domain.GeoPoint{Latitude: 42.3314, Longitude: -83.0458},
			EndLocation:              domain.GeoPoint{Latitude: 42.3315, Longitude: -83.0458},
		},
	}}
	repo := postgres.NewMockRepository()
	routes := []RoutePair{
		{Origin: "Detroit", Destination: "Ann Arbor"},
		{Origin: "Parking lot", Destination: "Exit"},
		{Origin: "Nowhere", Destination: "Somewhere"},
	}

	collector := NewTrafficCollector(maps, repo, routes, 0, zaptest.NewLogger(t))
	// Wednesday 2026-03-04 08:15 UTC
	at := time.Date(2026, 3, 4, 8, 15, 0, 0, time.UTC)
	collector.now = func() time.Time { return at }

	stored := collector.CollectOnce(context.Background())
	assert.Equal(t, 1, stored)

	samples, err := repo.GetTrafficSamples(context.Background(), at.Add(-time.Minute), at.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, samples, 1)

	s := samples[0]
	assert.Equal(t, "Detroit", s.Origin)
	assert.Equal(t, "Ann Arbor", s.Destination)
	assert.Equal(t, 2460, s.TravelTimeSeconds)
	assert.Equal(t, 3120, s.TrafficTimeSeconds)
	assert.Equal(t, 8, s.Hour)
	assert.Equal(t, 2, s.DayOfWeek)
	assert.InDelta(t, 57.6, s.DistanceKm, 1)
	assert.Equal(t, DefaultCollectInterval, collector.interval)
}

func TestTrafficCollector_RunStopsOnCancel(t *testing.T) {
	repo := postgres.NewMockRepository()
	collector := NewTrafficCollector(&routeMaps{}, repo, []RoutePair{{Origin: "a", Destination: "b"}}, time.Hour, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		collector.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop after cancel")
	}
}

func TestTrafficSample_Clean(t *testing.T) {
	base := domain.TrafficSample{TravelTimeSeconds: 10, TrafficTimeSeconds: 10, DistanceKm: 1}
	assert.True(t, base.Clean())

	for _, mutate := range []func(*domain.TrafficSample){
		func(s *domain.TrafficSample) { s.TravelTimeSeconds = 0 },
		func(s *domain.TrafficSample) { s.TrafficTimeSeconds = -1 },
		func(s *domain.TrafficSample) { s.DistanceKm = domain.MinSampleDistanceKm },
	} {
		s := base
		mutate(&s)
		assert.False(t, s.Clean())
	}
}
