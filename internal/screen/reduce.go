package screen

import (
	"github.com/smartcity/routeplanner/internal/domain"
)

// Event is a named state transition
type Event interface {
	Name() string
}

// TextChanged records typing into a field; Seq tags the lookup it triggers
type TextChanged struct {
	Field Field
	Text  string
	Seq   uint64
}

// CandidatesLoaded delivers the autocomplete result of lookup Seq
type CandidatesLoaded struct {
	Field      Field
	Seq        uint64
	Candidates []domain.PlaceCandidate
}

// PlaceSelected picks a candidate whose coordinates have been resolved
type PlaceSelected struct {
	Field     Field
	Candidate domain.PlaceCandidate
	Coords    domain.GeoPoint
}

// RouteRequested starts route request Seq
type RouteRequested struct {
	Seq uint64
}

type RouteLoaded struct {
	Seq  uint64
	Plan domain.RoutePlan
}

type RouteFailed struct {
	Seq    uint64
	Notice string
}

func (e TextChanged) Name() string      { return string(e.Field) + "-changed" }
func (e CandidatesLoaded) Name() string { return string(e.Field) + "-candidates-loaded" }
func (e PlaceSelected) Name() string    { return string(e.Field) + "-selected" }
func (RouteRequested) Name() string     { return "route-requested" }
func (RouteLoaded) Name() string        { return "route-loaded" }
func (RouteFailed) Name() string        { return "route-failed" }

// Reduce returns the state after e. It never modifies s; unknown events
// return s unchanged.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case TextChanged:
		fs := s.Field(e.Field)
		if e.Seq <= fs.Seq {
			return s
		}
		fs.Text = e.Text
		fs.Seq = e.Seq
		if e.Text == "" {
			fs.Candidates = nil
		}
		return s.withField(e.Field, fs)

	case CandidatesLoaded:
		fs := s.Field(e.Field)
		// a newer lookup or a selection has superseded this response
		if e.Seq != fs.Seq {
			return s
		}
		fs.Candidates = clonePlaces(e.Candidates)
		return s.withField(e.Field, fs)

	case PlaceSelected:
		fs := s.Field(e.Field)
		coords := e.Coords
		fs.Text = e.Candidate.Description
		fs.Candidates = nil
		fs.Coords = &coords
		fs.Seq++
		return s.withField(e.Field, fs)

	case RouteRequested:
		if e.Seq <= s.RouteSeq {
			return s
		}
		s.RouteSeq = e.Seq
		if _, ok := s.routeRequest(); !ok {
			s.Status = StatusFailed
			s.Notice = NoticeSelectBoth
			return s
		}
		s.Status = StatusLoading
		s.Notice = ""
		return s

	case RouteLoaded:
		if e.Seq != s.RouteSeq {
			return s
		}
		summary := e.Plan.Summary
		s.Route = clonePoints(e.Plan.Path)
		s.Summary = &summary
		s.Status = StatusReady
		s.Notice = summary.Notice()
		return s

	case RouteFailed:
		if e.Seq != s.RouteSeq {
			return s
		}
		s.Status = StatusFailed
		s.Notice = e.Notice
		return s
	}
	return s
}

func clonePlaces(in []domain.PlaceCandidate) []domain.PlaceCandidate {
	if len(in) == 0 {
		return nil
	}
	return append([]domain.PlaceCandidate(nil), in...)
}

func clonePoints(in []domain.GeoPoint) []domain.GeoPoint {
	if len(in) == 0 {
		return nil
	}
	return append([]domain.GeoPoint(nil), in...)
}
