package screen

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcity/routeplanner/internal/domain"
	"github.com/smartcity/routeplanner/internal/service"
)

const lockStripes = 64

// RoutePlanner plans a route between two resolved places
type RoutePlanner interface {
	PlanRoute(ctx context.Context, req domain.RouteRequest) (domain.RoutePlan, error)
}

// Controller runs session operations. Network calls happen outside the
// per-session lock; their results are applied through Reduce afterwards.
type Controller struct {
	store   Store
	maps    service.MapsProvider
	planner RoutePlanner
	logger  *zap.Logger

	locks [lockStripes]sync.Mutex
}

// NewController creates a new session controller
func NewController(store Store, maps service.MapsProvider, planner RoutePlanner, logger *zap.Logger) *Controller {
	return &Controller{
		store:   store,
		maps:    maps,
		planner: planner,
		logger:  logger,
	}
}

// Create starts a new session
func (c *Controller) Create(ctx context.Context) (string, State, error) {
	id := uuid.NewString()
	s := NewState()
	if err := c.store.Save(ctx, id, s); err != nil {
		return "", State{}, err
	}
	return id, s, nil
}

// Get returns the current state of a session
func (c *Controller) Get(ctx context.Context, id string) (State, error) {
	return c.store.Load(ctx, id)
}

// Type records new text in a field and loads matching candidates. A response
// that arrives after a newer lookup was issued is discarded.
func (c *Controller) Type(ctx context.Context, id string, field Field, text string) (State, error) {
	var seq uint64
	s, err := c.update(ctx, id, func(s State) State {
		seq = s.Field(field).Seq + 1
		return Reduce(s, TextChanged{Field: field, Text: text, Seq: seq})
	})
	if err != nil || text == "" {
		return s, err
	}

	candidates, err := c.maps.Autocomplete(ctx, text)
	if err != nil {
		c.logger.Warn("autocomplete failed",
			zap.String("session", id),
			zap.String("field", string(field)),
			zap.Error(err),
		)
		return c.Get(ctx, id)
	}

	return c.update(ctx, id, func(s State) State {
		next := Reduce(s, CandidatesLoaded{Field: field, Seq: seq, Candidates: candidates})
		if next.Field(field).Seq != seq {
			c.logger.Debug("discarding stale candidates",
				zap.String("session", id),
				zap.Uint64("seq", seq),
				zap.Uint64("latest", next.Field(field).Seq),
			)
		}
		return next
	})
}

// Select resolves a candidate to coordinates and makes it the field's place.
// When the place cannot be resolved the failure is logged and the state is
// left as it was.
func (c *Controller) Select(ctx context.Context, id string, field Field, candidate domain.PlaceCandidate) (State, error) {
	if _, err := c.Get(ctx, id); err != nil {
		return State{}, err
	}

	coords, err := c.maps.PlaceDetails(ctx, candidate.PlaceID)
	if err != nil {
		c.logger.Error("failed to resolve place",
			zap.String("session", id),
			zap.String("place_id", candidate.PlaceID),
			zap.Error(err),
		)
		return c.Get(ctx, id)
	}

	return c.update(ctx, id, func(s State) State {
		return Reduce(s, PlaceSelected{Field: field, Candidate: candidate, Coords: coords})
	})
}

// RequestRoute plans a route between the selected places. Failures end up
// in the state's notice; the previously shown route stays in place. A plan
// that completes after a newer request was issued is discarded.
func (c *Controller) RequestRoute(ctx context.Context, id string) (State, error) {
	var (
		req   domain.RouteRequest
		ready bool
		seq   uint64
	)
	s, err := c.update(ctx, id, func(s State) State {
		req, ready = s.routeRequest()
		seq = s.RouteSeq + 1
		return Reduce(s, RouteRequested{Seq: seq})
	})
	if err != nil || !ready {
		return s, err
	}

	plan, err := c.planner.PlanRoute(ctx, req)
	if err != nil {
		c.logger.Error("failed to plan route", zap.String("session", id), zap.Error(err))
		notice := NoticeRouteFailed
		if errors.Is(err, service.ErrNoRoute) {
			notice = NoticeNoRoute
		}
		return c.update(ctx, id, func(s State) State {
			return Reduce(s, RouteFailed{Seq: seq, Notice: notice})
		})
	}

	return c.update(ctx, id, func(s State) State {
		if s.RouteSeq != seq {
			c.logger.Debug("discarding stale route",
				zap.String("session", id),
				zap.Uint64("seq", seq),
				zap.Uint64("latest", s.RouteSeq),
			)
		}
		return Reduce(s, RouteLoaded{Seq: seq, Plan: plan})
	})
}

// update applies fn to the stored state under the session's lock
func (c *Controller) update(ctx context.Context, id string, fn func(State) State) (State, error) {
	mu := c.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.store.Load(ctx, id)
	if err != nil {
		return State{}, err
	}
	next := fn(s)
	if err := c.store.Save(ctx, id, next); err != nil {
		return State{}, err
	}
	return next, nil
}

func (c *Controller) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &c.locks[h.Sum32()%lockStripes]
}
