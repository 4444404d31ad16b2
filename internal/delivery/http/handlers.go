package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/smartcity/routeplanner/internal/domain"
	"github.com/smartcity/routeplanner/internal/polyline"
	"github.com/smartcity/routeplanner/internal/screen"
	"github.com/smartcity/routeplanner/internal/service"
	"github.com/smartcity/routeplanner/pkg/utils"
)

// RoutePlanner plans a route between two resolved places
type RoutePlanner interface {
	PlanRoute(ctx context.Context, req domain.RouteRequest) (domain.RoutePlan, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	sessions *screen.Controller
	planner  RoutePlanner
	maps     service.MapsProvider
	repo     service.DataRepository
	logger   *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(sessions *screen.Controller, planner RoutePlanner, maps service.MapsProvider, repo service.DataRepository, logger *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		planner:  planner,
		maps:     maps,
		repo:     repo,
		logger:   logger,
	}
}

type decodeRequest struct {
	Points string `json:"points"`
}

type textRequest struct {
	Text string `json:"text"`
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	database := "ok"
	if err := h.repo.Health(c.Context()); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		database = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "routeplanner",
		"version":  "1.0.0",
		"database": database,
	})
}

// Autocomplete returns place candidates for the input query
func (h *Handler) Autocomplete(c *fiber.Ctx) error {
	candidates, err := h.maps.Autocomplete(c.Context(), c.Query("input"))
	if err != nil {
		h.logger.Error("autocomplete failed", zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch place suggestions")
	}
	if candidates == nil {
		candidates = []domain.PlaceCandidate{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    candidates,
		"count":   len(candidates),
	})
}

// PlaceDetails resolves a place id to coordinates
func (h *Handler) PlaceDetails(c *fiber.Ctx) error {
	placeID := param(c, "placeId")
	point, err := h.maps.PlaceDetails(c.Context(), placeID)
	if err != nil {
		h.logger.Error("place details failed", zap.String("place_id", placeID), zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "Failed to resolve place")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    point,
	})
}

// PlanRoute plans a route with live traffic and predicted travel time
func (h *Handler) PlanRoute(c *fiber.Ctx) error {
	var req domain.RouteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	plan, err := h.planner.PlanRoute(c.Context(), req)
	if err != nil {
		h.logger.Error("route planning failed", zap.Error(err))
		if errors.Is(err, service.ErrNoRoute) {
			return fiber.NewError(fiber.StatusNotFound, screen.NoticeNoRoute)
		}
		return fiber.NewError(fiber.StatusBadGateway, screen.NoticeRouteFailed)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    plan,
	})
}

// DecodePolyline decodes an encoded path; ?format=geojson returns a FeatureCollection
func (h *Handler) DecodePolyline(c *fiber.Ctx) error {
	var req decodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	points, err := polyline.Decode(req.Points)
	if err != nil {
		var decodeErr *polyline.DecodeError
		if errors.As(err, &decodeErr) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, decodeErr.Error())
		}
		return err
	}

	if c.Query("format") == "geojson" {
		return c.JSON(routeFeatureCollection(points, nil))
	}
	if points == nil {
		points = []domain.GeoPoint{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    points,
		"count":   len(points),
	})
}

// GetTrafficSamples returns collected samples within a time range
func (h *Handler) GetTrafficSamples(c *fiber.Ctx) error {
	hours := utils.ClampInt(c.QueryInt("hours", 24), 1, 720) // max 30 days

	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	data, err := h.repo.GetTrafficSamples(c.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to fetch traffic samples", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch traffic samples")
	}
	if data == nil {
		data = []domain.TrafficSample{}
	}

	return c.JSON(domain.TrafficSamplesResponse{
		Data:    data,
		Count:   len(data),
		Success: true,
	})
}

// CreateSession starts a planning session
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	id, state, err := h.sessions.Create(c.Context())
	if err != nil {
		return h.sessionError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      id,
		"data":    state,
	})
}

// GetSession returns the state of a planning session
func (h *Handler) GetSession(c *fiber.Ctx) error {
	state, err := h.sessions.Get(c.Context(), param(c, "id"))
	if err != nil {
		return h.sessionError(err)
	}
	return h.sessionJSON(c, state)
}

// TypeText updates the origin or destination text and loads suggestions
func (h *Handler) TypeText(c *fiber.Ctx) error {
	field, err := screen.ParseField(c.Params("field"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	state, err := h.sessions.Type(c.Context(), param(c, "id"), field, req.Text)
	if err != nil {
		return h.sessionError(err)
	}
	return h.sessionJSON(c, state)
}

// SelectPlace selects one of the suggestions for a field
func (h *Handler) SelectPlace(c *fiber.Ctx) error {
	field, err := screen.ParseField(c.Params("field"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var candidate domain.PlaceCandidate
	if err := c.BodyParser(&candidate); err != nil || candidate.PlaceID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "place_id is required")
	}

	state, err := h.sessions.Select(c.Context(), param(c, "id"), field, candidate)
	if err != nil {
		return h.sessionError(err)
	}
	return h.sessionJSON(c, state)
}

// RequestRoute plans the route of a session. Failures are reported in the
// state's notice with a 200 response.
func (h *Handler) RequestRoute(c *fiber.Ctx) error {
	state, err := h.sessions.RequestRoute(c.Context(), param(c, "id"))
	if err != nil {
		return h.sessionError(err)
	}
	return h.sessionJSON(c, state)
}

// SessionRouteGeoJSON returns the session's current route as GeoJSON
func (h *Handler) SessionRouteGeoJSON(c *fiber.Ctx) error {
	state, err := h.sessions.Get(c.Context(), param(c, "id"))
	if err != nil {
		return h.sessionError(err)
	}
	return c.JSON(routeFeatureCollection(state.Route, state.Summary))
}

func (h *Handler) sessionJSON(c *fiber.Ctx, state screen.State) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    state,
	})
}

// param returns a copy of a route parameter. Fiber's value points into a
// pooled buffer and must not outlive the request, e.g. as a store key.
func param(c *fiber.Ctx, key string) string {
	return fiberutils.CopyString(c.Params(key))
}

func (h *Handler) sessionError(err error) error {
	if errors.Is(err, screen.ErrSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	h.logger.Error("session store failure", zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "Session unavailable")
}
