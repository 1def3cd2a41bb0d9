package survey

import (
	"math"

	"github.com/woozymasta/gradetool/internal/geo"
	"gonum.org/v1/gonum/mat"
)

// DegenerateDet is the determinant below which the normal matrix is treated
// as singular and no convergence point is reported.
const DegenerateDet = 1e-10

// Convergence is the point the sighting rays pass closest to.
type Convergence struct {
	Point      geo.Vec3       `json:"point"`
	Coordinate geo.Coordinate `json:"coordinate"`
}

// Converge finds the point z minimizing the summed squared perpendicular
// distance to every sighting ray:
//
//	sum_i |(I - u_i u_i^T)(z - p_i)|^2
//
// by solving (sum P_i) z = sum P_i p_i. It reports false when the rays do not
// pin down a point: no rays, a single ray, all rays parallel, a zero
// direction, or a solution that is not finite.
func Converge(sightings []Sighting) (Convergence, bool) {
	if len(sightings) == 0 {
		return Convergence{}, false
	}

	a := mat.NewSymDense(3, nil)
	b := mat.NewVecDense(3, nil)

	for _, s := range sightings {
		u, err := s.Direction.Unit()
		if err != nil {
			return Convergence{}, false
		}
		uv := u.Array()
		pv := s.Point.Array()

		for i := 0; i < 3; i++ {
			var row float64
			for j := 0; j < 3; j++ {
				p := -uv[i] * uv[j]
				if i == j {
					p++
				}
				if j >= i {
					a.SetSym(i, j, a.At(i, j)+p)
				}
				row += p * pv[j]
			}
			b.SetVec(i, b.AtVec(i)+row)
		}
	}

	if det := mat.Det(a); math.Abs(det) < DegenerateDet || math.IsNaN(det) {
		return Convergence{}, false
	}

	var z mat.VecDense
	if err := z.SolveVec(a, b); err != nil {
		return Convergence{}, false
	}

	point := geo.Vec3{X: z.AtVec(0), Y: z.AtVec(1), Z: z.AtVec(2)}
	if point.Validate() != nil {
		return Convergence{}, false
	}
	return Convergence{
		Point:      point,
		Coordinate: geo.ToGeodetic(point),
	}, true
}
