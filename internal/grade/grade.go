// Package grade turns device attitude into slope grade readings.
package grade

import (
	"fmt"
	"math"
	"strings"

	"github.com/woozymasta/gradetool/internal/geo"
)

// Units selects how a grade is displayed.
type Units string

const (
	Percent Units = "percent"
	Degrees Units = "degrees"
)

// ParseUnits accepts "percent" or "degrees" in any case.
func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(strings.TrimSpace(s))); u {
	case Percent, Degrees:
		return u, nil
	}
	return "", fmt.Errorf("unknown grade units %q", s)
}

// Grade is an inclination angle in radians, positive uphill.
type Grade float64

// FromPitch returns the grade of a device lying along the slope.
func FromPitch(pitch float64) Grade {
	return Grade(pitch)
}

// FromAttitude returns the grade seen along the camera axis. The third
// column of the attitude matrix is the camera axis expressed against the
// vertical.
func FromAttitude(m geo.Matrix3) Grade {
	dot := math.Max(-1, math.Min(1, m[2][2]))
	return Grade(math.Acos(dot) - math.Pi/2)
}

// Radians returns the angle in radians.
func (g Grade) Radians() float64 { return float64(g) }

// Degrees returns the angle in degrees.
func (g Grade) Degrees() float64 { return float64(g) * 180 / math.Pi }

// Percent returns rise over run times 100.
func (g Grade) Percent() float64 { return 100 * math.Tan(float64(g)) }

// Format renders the magnitude of g in the given units with two decimals.
func Format(g Grade, units Units) string {
	if units == Degrees {
		return fmt.Sprintf("%.2f°", math.Abs(g.Degrees()))
	}
	return fmt.Sprintf("%.2f%%", math.Abs(g.Percent()))
}
