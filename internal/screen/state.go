// Package screen models one route planning session as an immutable State
// advanced by named events through the pure Reduce function.
package screen

import (
	"fmt"

	"github.com/smartcity/routeplanner/internal/domain"
)

// Field selects the origin or the destination input
type Field string

const (
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
)

// ParseField validates a field name from a request path
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldOrigin:
		return FieldOrigin, nil
	case FieldDestination:
		return FieldDestination, nil
	}
	return "", fmt.Errorf("screen: unknown field %q", s)
}

// Status of the route request
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// User facing notices
const (
	NoticeSelectBoth  = "Please select both origin and destination."
	NoticeNoRoute     = "No route found."
	NoticeRouteFailed = "Failed to fetch traffic information."
)

// FieldState is one address input with its suggestions.
// Seq is the sequence number of the latest issued autocomplete lookup.
type FieldState struct {
	Text       string                  `json:"text"`
	Candidates []domain.PlaceCandidate `json:"candidates"`
	Coords     *domain.GeoPoint        `json:"coords,omitempty"`
	Seq        uint64                  `json:"seq"`
}

// State is everything the client renders for a session.
// RouteSeq is the sequence number of the latest route request.
type State struct {
	MapCenter   domain.GeoPoint      `json:"map_center"`
	Origin      FieldState           `json:"origin"`
	Destination FieldState           `json:"destination"`
	Route       []domain.GeoPoint    `json:"route"`
	Summary     *domain.RouteSummary `json:"summary,omitempty"`
	Status      Status               `json:"status"`
	Notice      string               `json:"notice,omitempty"`
	RouteSeq    uint64               `json:"route_seq"`
}

// NewState returns the initial state of a session
func NewState() State {
	return State{
		MapCenter: domain.GeoPoint{Latitude: domain.DetroitCenterLat, Longitude: domain.DetroitCenterLon},
		Status:    StatusIdle,
	}
}

// Field returns the state of one input
func (s State) Field(f Field) FieldState {
	if f == FieldDestination {
		return s.Destination
	}
	return s.Origin
}

func (s State) withField(f Field, fs FieldState) State {
	if f == FieldDestination {
		s.Destination = fs
	} else {
		s.Origin = fs
	}
	return s
}

// routeRequest builds the planner input; ok is false until both places are resolved
func (s State) routeRequest() (domain.RouteRequest, bool) {
	if s.Origin.Coords == nil || s.Destination.Coords == nil {
		return domain.RouteRequest{}, false
	}
	return domain.RouteRequest{
		Origin:            s.Origin.Text,
		Destination:       s.Destination.Text,
		OriginCoords:      *s.Origin.Coords,
		DestinationCoords: *s.Destination.Coords,
	}, true
}
