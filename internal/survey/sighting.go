// Package survey holds the sighting engine: an ordered list of observation
// rays, the least squares point they converge on and statistics of the path
// walked between them.
package survey

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/woozymasta/gradetool/internal/geo"
)

// Sighting is one recorded observation: where the device stood and where it
// pointed, both in the Earth-centered frame.
type Sighting struct {
	ID        uuid.UUID `json:"id"`
	Point     geo.Vec3  `json:"point"`
	Direction geo.Vec3  `json:"direction"`
}

// NewSighting builds a sighting with a fresh identifier. The direction is
// normalized; a zero direction or a non-finite point is rejected.
func NewSighting(point, direction geo.Vec3) (Sighting, error) {
	if err := checkPoint(point); err != nil {
		return Sighting{}, err
	}
	dir, err := direction.Unit()
	if err != nil {
		return Sighting{}, fmt.Errorf("sighting direction: %w", err)
	}

	return Sighting{
		ID:        uuid.New(),
		Point:     point,
		Direction: dir,
	}, nil
}

// FromReading builds a sighting from a position fix and the device attitude
// taken at the same moment.
func FromReading(c geo.Coordinate, attitude geo.Matrix3) (Sighting, error) {
	if err := c.Validate(); err != nil {
		return Sighting{}, err
	}

	dir, err := geo.DirectionFromAttitude(attitude)
	if err != nil {
		return Sighting{}, err
	}

	return Sighting{
		ID:        uuid.New(),
		Point:     geo.ToCartesian(c),
		Direction: dir,
	}, nil
}

// Coordinate returns the geodetic position of the sighting for display.
func (s Sighting) Coordinate() geo.Coordinate {
	return geo.ToGeodetic(s.Point)
}
