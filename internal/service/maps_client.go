package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/smartcity/routeplanner/internal/domain"
)

// DefaultMapsBaseURL is the Google Maps Web Services root
const DefaultMapsBaseURL = "https://maps.googleapis.com/maps/api"

const (
	placeCacheDuration        = 24 * time.Hour
	placeCacheCleanupInterval = 48 * time.Hour
)

// MapsClient talks to the places and directions web services
type MapsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	places     *cache.Cache
	logger     *zap.Logger
}

// NewMapsClient creates a new maps client. An empty baseURL selects DefaultMapsBaseURL.
func NewMapsClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *MapsClient {
	if baseURL == "" {
		baseURL = DefaultMapsBaseURL
	}
	return &MapsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		places: cache.New(placeCacheDuration, placeCacheCleanupInterval),
		logger: logger,
	}
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l latLng) point() domain.GeoPoint {
	return domain.GeoPoint{Latitude: l.Lat, Longitude: l.Lng}
}

type textValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

type autocompleteResponse struct {
	Predictions []domain.PlaceCandidate `json:"predictions"`
}

type placeDetailsResponse struct {
	Result *struct {
		Geometry *struct {
			Location *latLng `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline *struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Duration          *textValue `json:"duration"`
			DurationInTraffic *textValue `json:"duration_in_traffic"`
			Distance          *textValue `json:"distance"`
			StartLocation     latLng     `json:"start_location"`
			EndLocation       latLng     `json:"end_location"`
		} `json:"legs"`
	} `json:"routes"`
}

// Autocomplete returns place candidates for free text.
// Empty input, an empty prediction list and an undecodable body all yield no candidates.
func (c *MapsClient) Autocomplete(ctx context.Context, input string) ([]domain.PlaceCandidate, error) {
	if input == "" {
		return nil, nil
	}

	resp, err := c.get(ctx, "/place/autocomplete/json", url.Values{"input": {input}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ac autocompleteResponse
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("autocomplete returned non-200", zap.Int("status", resp.StatusCode))
		return nil, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&ac); err != nil {
		c.logger.Debug("autocomplete response not decodable", zap.Error(err))
		return nil, nil
	}

	return ac.Predictions, nil
}

// PlaceDetails resolves a place id to its coordinates
func (c *MapsClient) PlaceDetails(ctx context.Context, placeID string) (domain.GeoPoint, error) {
	if cached, ok := c.places.Get(placeID); ok {
		return cached.(domain.GeoPoint), nil
	}

	resp, err := c.get(ctx, "/place/details/json", url.Values{"place_id": {placeID}})
	if err != nil {
		return domain.GeoPoint{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GeoPoint{}, fmt.Errorf("maps: place details returned status %d", resp.StatusCode)
	}

	var details placeDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("maps: failed to decode place details: %w", err)
	}
	if details.Result == nil || details.Result.Geometry == nil || details.Result.Geometry.Location == nil {
		return domain.GeoPoint{}, fmt.Errorf("maps: place details without location: %w", ErrMalformedResponse)
	}

	point := details.Result.Geometry.Location.point()
	c.places.Set(placeID, point, cache.DefaultExpiration)
	return point, nil
}

// Directions requests a driving route with live traffic. Origin and destination
// are either "lat,lng" pairs or free-text addresses.
func (c *MapsClient) Directions(ctx context.Context, origin, destination string) (domain.Directions, error) {
	resp, err := c.get(ctx, "/directions/json", url.Values{
		"origin":         {origin},
		"destination":    {destination},
		"departure_time": {"now"},
	})
	if err != nil {
		return domain.Directions{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Directions{}, fmt.Errorf("maps: directions returned status %d", resp.StatusCode)
	}

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return domain.Directions{}, fmt.Errorf("maps: failed to decode directions: %w", err)
	}

	if len(dr.Routes) == 0 {
		return domain.Directions{}, fmt.Errorf("maps: %s -> %s (status %q): %w", origin, destination, dr.Status, ErrNoRoute)
	}

	route := dr.Routes[0]
	if route.OverviewPolyline == nil {
		return domain.Directions{}, fmt.Errorf("maps: route without overview polyline: %w", ErrMalformedResponse)
	}
	if len(route.Legs) == 0 || route.Legs[0].Duration == nil {
		return domain.Directions{}, fmt.Errorf("maps: route without leg duration: %w", ErrMalformedResponse)
	}

	leg := route.Legs[0]
	directions := domain.Directions{
		EncodedPath:              route.OverviewPolyline.Points,
		DurationText:             leg.Duration.Text,
		DurationSeconds:          int(leg.Duration.Value),
		DurationInTrafficText:    domain.DurationUnavailable,
		DurationInTrafficSeconds: int(leg.Duration.Value),
		StartLocation:            leg.StartLocation.point(),
		EndLocation:              leg.EndLocation.point(),
	}
	if leg.DurationInTraffic != nil {
		directions.DurationInTrafficText = leg.DurationInTraffic.Text
		directions.DurationInTrafficSeconds = int(leg.DurationInTraffic.Value)
	}
	if leg.Distance != nil {
		directions.DistanceMeters = int(leg.Distance.Value)
	}

	return directions, nil
}

func (c *MapsClient) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	query.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("maps: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("maps: request to %s failed: %w", path, err)
	}
	return resp, nil
}
