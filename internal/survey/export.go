package survey

import (
	"github.com/google/uuid"
	"github.com/woozymasta/gradetool/internal/geo"
)

// Entry is a sighting as shown to people: identifier, geodetic position and
// the raw vectors.
type Entry struct {
	ID        uuid.UUID      `json:"id" yaml:"id"`
	Position  geo.Coordinate `json:"position" yaml:"position"`
	Point     geo.Vec3       `json:"point" yaml:"point"`
	Direction geo.Vec3       `json:"direction" yaml:"direction"`
}

// Report is the read-only view of a survey.
type Report struct {
	Stats     Stats          `json:"stats" yaml:"stats"`
	Sightings []Entry        `json:"sightings" yaml:"sightings"`
	Profile   []ProfilePoint `json:"profile" yaml:"profile"`
}

// Report builds the display view of s. Positions are derived on demand.
func (s Survey) Report() Report {
	entries := make([]Entry, 0, len(s.sightings))
	for _, sg := range s.sightings {
		entries = append(entries, Entry{
			ID:        sg.ID,
			Position:  sg.Coordinate(),
			Point:     sg.Point,
			Direction: sg.Direction,
		})
	}

	return Report{
		Stats:     s.stats,
		Sightings: entries,
		Profile:   Profile(s.sightings),
	}
}

// GeoJSON returns the walked path as a LineString, every sighting as a Point
// and, when the rays converge, the target as a Point.
func (s Survey) GeoJSON() geo.GeoJSONFeatureCollection {
	fc := geo.NewFeatureCollection(len(s.sightings) + 2)

	coords := make([]geo.Coordinate, 0, len(s.sightings))
	for _, sg := range s.sightings {
		coords = append(coords, sg.Coordinate())
	}

	if len(coords) > 1 {
		fc.Features = append(fc.Features, geo.LineStringFeature(coords, map[string]interface{}{
			"kind":             "path",
			"path_distance_m":  s.stats.PathDistance,
			"elevation_gain_m": s.stats.ElevationGain,
		}))
	}

	for i, c := range coords {
		fc.Features = append(fc.Features, geo.PointFeature(c, map[string]interface{}{
			"kind":  "sighting",
			"id":    s.sightings[i].ID.String(),
			"index": i,
		}))
	}

	if t := s.stats.Target; t != nil {
		fc.Features = append(fc.Features, geo.PointFeature(*t, map[string]interface{}{
			"kind":       "target",
			"altitude_m": t.Alt,
		}))
	}

	return fc
}
