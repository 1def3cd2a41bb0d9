package survey

import (
	"errors"
	"fmt"

	"github.com/woozymasta/gradetool/internal/geo"
	"gopkg.in/yaml.v3"
)

// ErrIncompleteReading is returned for a reading that names neither a ray
// nor a position with attitude.
var ErrIncompleteReading = errors.New("need point and direction, or position and attitude")

// Reading is one recorded observation as it arrives from outside: either a
// raw ray in the Earth-centered frame or a position fix with the device
// attitude. The second form wins when both are set. The attitude must be a
// rotation matrix within geo.RotationTolerance.
type Reading struct {
	Point     *geo.Vec3       `json:"point,omitempty" yaml:"point,omitempty"`
	Direction *geo.Vec3       `json:"direction,omitempty" yaml:"direction,omitempty"`
	Position  *geo.Coordinate `json:"position,omitempty" yaml:"position,omitempty"`
	Attitude  *geo.Matrix3    `json:"attitude,omitempty" yaml:"attitude,omitempty"`
}

// Op returns the operation appending the reading.
func (r Reading) Op() (Operation, error) {
	switch {
	case r.Position != nil && r.Attitude != nil:
		if err := r.Attitude.CheckRotation(geo.RotationTolerance); err != nil {
			return nil, err
		}
		return AddReading(*r.Position, *r.Attitude), nil
	case r.Point != nil && r.Direction != nil:
		return Add(Sighting{Point: *r.Point, Direction: *r.Direction}), nil
	}
	return nil, ErrIncompleteReading
}

// ParseReadings decodes a YAML or JSON list of readings.
func ParseReadings(data []byte) ([]Reading, error) {
	var readings []Reading
	if err := yaml.Unmarshal(data, &readings); err != nil {
		return nil, fmt.Errorf("parse readings: %w", err)
	}
	return readings, nil
}

// FromReadings builds a survey by appending readings in order.
func FromReadings(readings []Reading) (Survey, error) {
	var s Survey
	for i, r := range readings {
		op, err := r.Op()
		if err != nil {
			return Survey{}, fmt.Errorf("reading %d: %w", i+1, err)
		}
		if s, _, err = Mutate(s, op); err != nil {
			return Survey{}, fmt.Errorf("reading %d: %w", i+1, err)
		}
	}
	return s, nil
}
