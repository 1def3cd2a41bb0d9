package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateAttitude is returned when an attitude matrix does not map the
// device forward vector to a usable direction.
var ErrDegenerateAttitude = errors.New("degenerate attitude matrix")

// ErrNotRotation is returned for attitude matrices that are not proper rotations.
var ErrNotRotation = errors.New("attitude is not a rotation matrix")

// RotationTolerance bounds how far an attitude may drift from orthonormal with
// determinant +1 and still be accepted as a sensor reading.
const RotationTolerance = 1e-3

// DeviceForward is the camera axis in device coordinates.
var DeviceForward = Vec3{X: 0, Y: 0, Z: -1}

// Matrix3 is a 3x3 matrix stored by rows: m[0] = (m11, m12, m13).
type Matrix3 [3][3]float64

// Identity3 is the 3x3 identity matrix.
var Identity3 = Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// MulVec returns m * v.
func (m Matrix3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns the transpose of m.
func (m Matrix3) Transpose() Matrix3 {
	var t Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

// Det returns the determinant of m.
func (m Matrix3) Det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// CheckRotation reports whether m is orthonormal with determinant +1, each
// entry of m*m^T and the determinant within tol of the identity's.
func (m Matrix3) CheckRotation(tol float64) error {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			dot := m[i][0]*m[j][0] + m[i][1]*m[j][1] + m[i][2]*m[j][2]
			if !(math.Abs(dot-want) <= tol) {
				return fmt.Errorf("%w: rows %d and %d have dot product %v", ErrNotRotation, i+1, j+1, dot)
			}
		}
	}
	if det := m.Det(); !(math.Abs(det-1) <= tol) {
		return fmt.Errorf("%w: determinant %v", ErrNotRotation, det)
	}
	return nil
}

// DirectionFromAttitude returns the unit pointing direction of the device
// camera in the reference frame.
//
// The matrix is taken in the row layout motion sensors report (m11..m33),
// which rotates reference-frame vectors into the device frame, so the
// forward vector is carried back through the transpose.
//
// Any matrix that yields a usable direction is accepted and the result is
// normalized; callers taking external readings check CheckRotation first.
func DirectionFromAttitude(m Matrix3) (Vec3, error) {
	dir, err := m.Transpose().MulVec(DeviceForward).Unit()
	if err != nil {
		return Vec3{}, fmt.Errorf("%w: %v", ErrDegenerateAttitude, err)
	}
	return dir, nil
}
