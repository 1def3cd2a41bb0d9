// Package geo handles geographic data structures and coordinate conversions.
package geo

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature (Point or LineString).
// Coordinates holds a position for Point and a list of positions for LineString.
type GeoJSONGeometry struct {
	Type        string      `json:"type" yaml:"type"`
	Coordinates interface{} `json:"coordinates" yaml:"coordinates"`
}

// NewFeatureCollection returns an empty collection ready for appending.
func NewFeatureCollection(capacity int) GeoJSONFeatureCollection {
	return GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]GeoJSONFeature, 0, capacity),
	}
}

// Position returns the GeoJSON position of c: [Lon, Lat, Alt].
func (c Coordinate) Position() []float64 {
	return []float64{c.Lon, c.Lat, c.Alt}
}

// PointFeature builds a Point feature at c.
func PointFeature(c Coordinate, props map[string]interface{}) GeoJSONFeature {
	return GeoJSONFeature{
		Type:       "Feature",
		Properties: props,
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: c.Position(),
		},
	}
}

// LineStringFeature builds a LineString feature through coords in order.
func LineStringFeature(coords []Coordinate, props map[string]interface{}) GeoJSONFeature {
	positions := make([][]float64, 0, len(coords))
	for _, c := range coords {
		positions = append(positions, c.Position())
	}

	return GeoJSONFeature{
		Type:       "Feature",
		Properties: props,
		Geometry: GeoJSONGeometry{
			Type:        "LineString",
			Coordinates: positions,
		},
	}
}
