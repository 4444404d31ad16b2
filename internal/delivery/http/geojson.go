package http

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/smartcity/routeplanner/internal/domain"
	"github.com/smartcity/routeplanner/internal/polyline"
	"github.com/smartcity/routeplanner/pkg/utils"
)

// routeFeatureCollection renders a path as a single LineString feature.
// GeoJSON positions are [lng, lat].
func routeFeatureCollection(path []domain.GeoPoint, summary *domain.RouteSummary) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(path) == 0 {
		return fc
	}

	line := make(orb.LineString, 0, len(path))
	for _, p := range path {
		line = append(line, orb.Point{p.Longitude, p.Latitude})
	}

	feature := geojson.NewFeature(line)
	feature.Properties["length_km"] = utils.RoundTo(polyline.Length(path), 3)
	feature.Properties["points"] = len(path)
	if summary != nil {
		feature.Properties["duration"] = summary.DurationText
		feature.Properties["duration_in_traffic"] = summary.DurationInTrafficText
		feature.Properties["predicted_minutes"] = summary.PredictedMinutes
	}
	fc.Append(feature)

	return fc
}
