package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/smartcity/routeplanner/internal/domain"
)

func newTestMapsClient(t *testing.T, handler http.HandlerFunc) *MapsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMapsClient(srv.URL, "test-key", 5*time.Second, zaptest.NewLogger(t))
}

func TestMapsClient_Autocomplete(t *testing.T) {
	client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/autocomplete/json", r.URL.Path)
		assert.Equal(t, "Detroit Inst", r.URL.Query().Get("input"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"predictions":[
			{"place_id":"p1","description":"Detroit Institute of Arts"},
			{"place_id":"p2","description":"Detroit Institute of Music"}
		],"status":"OK"}`))
	})

	candidates, err := client.Autocomplete(context.Background(), "Detroit Inst")
	require.NoError(t, err)
	assert.Equal(t, []domain.PlaceCandidate{
		{PlaceID: "p1", Description: "Detroit Institute of Arts"},
		{PlaceID: "p2", Description: "Detroit Institute of Music"},
	}, candidates)
}

func TestMapsClient_AutocompleteNoResults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent predictions", `{"status":"ZERO_RESULTS"}`},
		{"empty predictions", `{"predictions":[]}`},
		{"malformed body", `<html>oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			candidates, err := client.Autocomplete(context.Background(), "x")
			require.NoError(t, err)
			assert.Empty(t, candidates)
		})
	}
}

func TestMapsClient_AutocompleteEmptyInputSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	candidates, err := client.Autocomplete(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, calls.Load())
}

func TestMapsClient_PlaceDetailsCached(t *testing.T) {
	var calls atomic.Int32
	client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		_, _ = w.Write([]byte(`{"result":{"geometry":{"location":{"lat":42.3594,"lng":-83.0645}}}}`))
	})

	for i := 0; i < 2; i++ {
		point, err := client.PlaceDetails(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, domain.GeoPoint{Latitude: 42.3594, Longitude: -83.0645}, point)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestMapsClient_PlaceDetailsMissingLocation(t *testing.T) {
	client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"INVALID_REQUEST"}`))
	})

	_, err := client.PlaceDetails(context.Background(), "bad")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

const directionsBody = `{
	"status": "OK",
	"routes": [{
		"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC"},
		"legs": [{
			"duration": {"text": "41 mins", "value": 2460},
			"duration_in_traffic": {"text": "52 mins", "value": 3120},
			"distance": {"text": "69.5 km", "value": 69512},
			"start_location": {"lat": 42.3314, "lng": -83.0458},
			"end_location": {"lat": 42.2808, "lng": -83.743}
		}]
	}]
}`

func TestMapsClient_Directions(t *testing.T) {
	client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/directions/json", r.URL.Path)
		assert.Equal(t, "42.3314,-83.0458", q.Get("origin"))
		assert.Equal(t, "42.2808,-83.743", q.Get("destination"))
		assert.Equal(t, "now", q.Get("departure_time"))
		_, _ = w.Write([]byte(directionsBody))
	})

	d, err := client.Directions(context.Background(), "42.3314,-83.0458", "42.2808,-83.743")
	require.NoError(t, err)
	assert.Equal(t, domain.Directions{
		EncodedPath:              "_p~iF~ps|U_ulLnnqC",
		DurationText:             "41 mins",
		DurationInTrafficText:    "52 mins",
		DurationSeconds:          2460,
		DurationInTrafficSeconds: 3120,
		DistanceMeters:           69512,
		StartLocation:            domain.GeoPoint{Latitude: 42.3314, Longitude: -83.0458},
		EndLocation:              domain.GeoPoint{Latitude: 42.2808, Longitude: -83.743},
	}, d)
}

func TestMapsClient_DirectionsWithoutTraffic(t *testing.T) {
	client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[{"overview_polyline":{"points":"??"},"legs":[{"duration":{"text":"5 mins","value":300}}]}]}`))
	})

	d, err := client.Directions(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "5 mins", d.DurationText)
	assert.Equal(t, domain.DurationUnavailable, d.DurationInTrafficText)
	assert.Equal(t, 300, d.DurationInTrafficSeconds)
}

func TestMapsClient_DirectionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no routes", http.StatusOK, `{"routes":[],"status":"ZERO_RESULTS"}`, ErrNoRoute},
		{"routes absent", http.StatusOK, `{"status":"NOT_FOUND"}`, ErrNoRoute},
		{"missing polyline", http.StatusOK, `{"routes":[{"legs":[{"duration":{"text":"1 min"}}]}]}`, ErrMalformedResponse},
		{"missing legs", http.StatusOK, `{"routes":[{"overview_polyline":{"points":"??"}}]}`, ErrMalformedResponse},
		{"missing duration", http.StatusOK, `{"routes":[{"overview_polyline":{"points":"??"},"legs":[{}]}]}`, ErrMalformedResponse},
		{"server error", http.StatusInternalServerError, `{}`, nil},
		{"bad json", http.StatusOK, `{"routes":`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestMapsClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Directions(context.Background(), "a", "b")
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			}
		})
	}
}
