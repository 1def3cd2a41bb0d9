package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	// EquatorialRadius is the WGS84 equatorial radius in meters. It is the
	// sphere used when geodetic readings are projected into the Cartesian frame.
	EquatorialRadius = 6378137.0

	// MeanRadius is the mean Earth radius in meters. It is the sphere altitudes
	// are measured against when Cartesian points are turned back into readings.
	//
	// The two radii differ on purpose; stored surveys depend on both values.
	MeanRadius = 6371000.0

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// ErrInvalidCoordinate is returned for readings outside the geodetic ranges.
var ErrInvalidCoordinate = errors.New("invalid geodetic coordinate")

// Coordinate is a geodetic reading: degrees of longitude and latitude and
// meters of altitude above the reference sphere.
type Coordinate struct {
	Lon float64 `json:"longitude" yaml:"longitude"`
	Lat float64 `json:"latitude" yaml:"latitude"`
	Alt float64 `json:"altitude" yaml:"altitude"`
}

// Validate rejects out of range or non-finite readings. Values are never clamped.
func (c Coordinate) Validate() error {
	switch {
	case math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180:
		return fmt.Errorf("%w: longitude %v not in [-180, 180]", ErrInvalidCoordinate, c.Lon)
	case math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90:
		return fmt.Errorf("%w: latitude %v not in [-90, 90]", ErrInvalidCoordinate, c.Lat)
	case math.IsNaN(c.Alt) || math.IsInf(c.Alt, 0):
		return fmt.Errorf("%w: altitude %v is not finite", ErrInvalidCoordinate, c.Alt)
	}
	return nil
}

// ToCartesian converts a geodetic reading into an Earth-centered point on
// the equatorial sphere.
//
// x points to the prime meridian on the equator, y to 90° east and z to the
// north pole. At the poles x and y are zero.
func ToCartesian(c Coordinate) Vec3 {
	return ToCartesianRadius(c, EquatorialRadius)
}

// ToCartesianRadius is ToCartesian on a sphere of the given radius.
func ToCartesianRadius(c Coordinate, radius float64) Vec3 {
	lat := c.Lat * degToRad
	lon := c.Lon * degToRad
	r := radius + c.Alt

	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// ToGeodetic converts an Earth-centered point back into a reading whose
// altitude is measured against the mean sphere.
//
// The origin has no direction, so it yields NaN longitude and latitude.
func ToGeodetic(p Vec3) Coordinate {
	return ToGeodeticRadius(p, MeanRadius)
}

// ToGeodeticRadius is ToGeodetic on a sphere of the given radius.
func ToGeodeticRadius(p Vec3, radius float64) Coordinate {
	r := p.Norm()
	if r == 0 {
		return Coordinate{Lon: math.NaN(), Lat: math.NaN(), Alt: -radius}
	}

	return Coordinate{
		Lon: math.Atan2(p.Y, p.X) * radToDeg,
		Lat: math.Asin(p.Z/r) * radToDeg,
		Alt: r - radius,
	}
}
