package grade

import "math"

// DefaultThreshold is the grade, in percent, a reading must pass before a
// change of sign is reported again.
const DefaultThreshold = 1.0

// Debouncer reports when the grade changes between uphill and downhill.
// Jitter around level ground is ignored: after each reported flip the grade
// must exceed the threshold before the next flip counts.
//
// A Debouncer is not safe for concurrent use.
type Debouncer struct {
	Threshold float64

	last   float64
	passed bool
}

// NewDebouncer returns a Debouncer with the given threshold in percent.
// A non-positive threshold selects DefaultThreshold.
func NewDebouncer(threshold float64) *Debouncer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Debouncer{Threshold: threshold}
}

// Update feeds a new reading and reports whether it flipped the sign.
func (d *Debouncer) Update(g Grade) bool {
	pct := g.Percent()

	flipped := false
	if d.passed && sign(pct) != sign(d.last) {
		flipped = true
		d.passed = false
	}
	d.passed = d.passed || math.Abs(pct) > d.Threshold

	d.last = pct
	return flipped
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
