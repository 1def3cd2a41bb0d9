package geo

import (
	"errors"
	"fmt"
	"math"
)

// minNorm is the smallest magnitude a vector may have and still be normalized.
const minNorm = 1e-12

var (
	// ErrZeroVector is returned when a vector is too short to carry a direction.
	ErrZeroVector = errors.New("vector has no direction")
	// ErrNonFinite is returned for vectors with NaN or infinite components,
	// or whose length overflows.
	ErrNonFinite = errors.New("vector is not finite")
)

// Vec3 is a point or direction in the Earth-centered frame, in meters.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(o Vec3) float64 {
	return v.Sub(o).Norm()
}

// Unit returns v scaled to length one.
func (v Vec3) Unit() (Vec3, error) {
	n := v.Norm()
	if n < minNorm || math.IsNaN(n) || math.IsInf(n, 0) {
		return Vec3{}, ErrZeroVector
	}
	return v.Scale(1 / n), nil
}

// Validate rejects NaN or infinite components and lengths that overflow.
func (v Vec3) Validate() error {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: (%v, %v, %v)", ErrNonFinite, v.X, v.Y, v.Z)
		}
	}
	if math.IsInf(v.Norm(), 0) {
		return fmt.Errorf("%w: length of (%v, %v, %v) overflows", ErrNonFinite, v.X, v.Y, v.Z)
	}
	return nil
}

// Array returns the components as a slice in x, y, z order.
func (v Vec3) Array() []float64 {
	return []float64{v.X, v.Y, v.Z}
}
