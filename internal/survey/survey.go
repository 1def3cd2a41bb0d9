package survey

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/woozymasta/gradetool/internal/geo"
)

const unitTolerance = 1e-12

// MaxPointNorm is the largest distance from the Earth's center, in meters, a
// sighting may be taken at. It keeps path sums and the solve finite.
const MaxPointNorm = 1e12

var (
	// ErrIndexOutOfRange is returned when an operation names a missing position.
	ErrIndexOutOfRange = errors.New("sighting index out of range")
	// ErrDuplicateID is returned when two sightings would share an identifier.
	ErrDuplicateID = errors.New("duplicate sighting id")
	// ErrPointOutOfRange is returned for sighting points farther than MaxPointNorm.
	ErrPointOutOfRange = errors.New("sighting point out of range")
)

// Stats are the values derived from the sighting sequence.
type Stats struct {
	PathDistance        float64         `json:"path_distance_m" yaml:"path_distance_m"`
	ElevationGain       float64         `json:"elevation_gain_m" yaml:"elevation_gain_m"`
	ConvergenceAltitude float64         `json:"convergence_altitude_m" yaml:"convergence_altitude_m"`
	Target              *geo.Coordinate `json:"target,omitempty" yaml:"target,omitempty"`
}

// Compute derives statistics from scratch. With fewer than two sightings
// every value is zero; without a convergence point the altitude is zero.
func Compute(sightings []Sighting) Stats {
	if len(sightings) < 2 {
		return Stats{}
	}

	stats := Stats{
		PathDistance:  PathLength(sightings),
		ElevationGain: ElevationGain(sightings),
	}
	if c, ok := Converge(sightings); ok {
		target := c.Coordinate
		stats.ConvergenceAltitude = target.Alt
		stats.Target = &target
	}
	return stats
}

// Survey is an ordered sequence of sightings with statistics that always
// match it. The zero value is an empty survey. A Survey is never modified in
// place; Mutate returns a new one.
type Survey struct {
	sightings []Sighting
	stats     Stats
}

// New builds a survey from an existing sequence, as when restoring state.
func New(sightings []Sighting) (Survey, error) {
	s, _, err := Mutate(Survey{}, Replace(sightings))
	return s, err
}

// Len returns the number of sightings.
func (s Survey) Len() int { return len(s.sightings) }

// At returns the sighting at index i.
func (s Survey) At(i int) Sighting { return s.sightings[i] }

// Sightings returns a copy of the sequence.
func (s Survey) Sightings() []Sighting { return slices.Clone(s.sightings) }

// Stats returns the derived statistics.
func (s Survey) Stats() Stats { return s.stats }

// Operation is a single change to the sighting sequence.
type Operation interface {
	// Name identifies the operation in logs and metrics.
	Name() string
	apply(in []Sighting) ([]Sighting, error)
}

// Mutate applies op to a copy of s and recomputes statistics. On error s and
// its statistics are returned unchanged.
func Mutate(s Survey, op Operation) (Survey, Stats, error) {
	next, err := op.apply(slices.Clone(s.sightings))
	if err != nil {
		return s, s.stats, fmt.Errorf("%s: %w", op.Name(), err)
	}
	if err := checkUnique(next); err != nil {
		return s, s.stats, fmt.Errorf("%s: %w", op.Name(), err)
	}
	out := Survey{sightings: next, stats: Compute(next)}
	return out, out.stats, nil
}

func checkUnique(sightings []Sighting) error {
	seen := make(map[uuid.UUID]struct{}, len(sightings))
	for _, s := range sightings {
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

type addOp struct{ sighting Sighting }

// Add appends a sighting to the end of the path.
func Add(s Sighting) Operation { return addOp{sighting: s} }

func (addOp) Name() string { return "add" }

func (o addOp) apply(in []Sighting) ([]Sighting, error) {
	s := o.sighting
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if err := checkPoint(s.Point); err != nil {
		return nil, err
	}
	dir, err := normalized(s.Direction)
	if err != nil {
		return nil, fmt.Errorf("sighting direction: %w", err)
	}
	s.Direction = dir
	return append(in, s), nil
}

// AddReading builds a sighting from a position fix and attitude and appends it.
// The reading is validated when the operation is applied.
func AddReading(c geo.Coordinate, attitude geo.Matrix3) Operation {
	return readingOp{coord: c, attitude: attitude}
}

type readingOp struct {
	coord    geo.Coordinate
	attitude geo.Matrix3
}

func (readingOp) Name() string { return "add" }

func (o readingOp) apply(in []Sighting) ([]Sighting, error) {
	s, err := FromReading(o.coord, o.attitude)
	if err != nil {
		return nil, err
	}
	return addOp{sighting: s}.apply(in)
}

type removeOp struct{ indices []int }

// Remove deletes the sightings at the given positions. Repeated positions are
// removed once.
func Remove(indices ...int) Operation { return removeOp{indices: slices.Clone(indices)} }

func (removeOp) Name() string { return "remove" }

func (o removeOp) apply(in []Sighting) ([]Sighting, error) {
	drop, err := indexSet(o.indices, len(in))
	if err != nil {
		return nil, err
	}
	out := in[:0]
	for i, s := range in {
		if _, ok := drop[i]; !ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type moveOp struct {
	from []int
	to   int
}

// Move relocates the sightings at positions from so that they sit, in their
// original relative order, before the element that was at position to.
// to is counted before removal and may equal the length to move to the end.
func Move(from []int, to int) Operation { return moveOp{from: slices.Clone(from), to: to} }

func (moveOp) Name() string { return "move" }

func (o moveOp) apply(in []Sighting) ([]Sighting, error) {
	if o.to < 0 || o.to > len(in) {
		return nil, fmt.Errorf("%w: destination %d of %d", ErrIndexOutOfRange, o.to, len(in))
	}
	moving, err := indexSet(o.from, len(in))
	if err != nil {
		return nil, err
	}

	var moved, kept []Sighting
	insertAt := o.to
	for i, s := range in {
		if _, ok := moving[i]; ok {
			moved = append(moved, s)
			if i < o.to {
				insertAt--
			}
			continue
		}
		kept = append(kept, s)
	}
	return slices.Insert(kept, insertAt, moved...), nil
}

type clearOp struct{}

// Clear removes every sighting.
func Clear() Operation { return clearOp{} }

func (clearOp) Name() string { return "clear" }

func (clearOp) apply([]Sighting) ([]Sighting, error) { return nil, nil }

type replaceOp struct{ sightings []Sighting }

// Replace swaps the whole sequence, as when restoring or importing a survey.
// Directions are normalized; sightings without an identifier get one.
func Replace(sightings []Sighting) Operation {
	return replaceOp{sightings: slices.Clone(sightings)}
}

func (replaceOp) Name() string { return "replace" }

func (o replaceOp) apply([]Sighting) ([]Sighting, error) {
	out := make([]Sighting, 0, len(o.sightings))
	for _, s := range o.sightings {
		var err error
		if out, err = (addOp{sighting: s}).apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type appendOp struct{ sightings []Sighting }

// Append adds several sightings to the end of the path in one step.
func Append(sightings []Sighting) Operation {
	return appendOp{sightings: slices.Clone(sightings)}
}

func (appendOp) Name() string { return "append" }

func (o appendOp) apply(in []Sighting) ([]Sighting, error) {
	var err error
	for _, s := range o.sightings {
		if in, err = (addOp{sighting: s}).apply(in); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func checkPoint(p geo.Vec3) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("sighting point: %w", err)
	}
	if n := p.Norm(); n > MaxPointNorm {
		return fmt.Errorf("%w: %v m from center", ErrPointOutOfRange, n)
	}
	return nil
}

// normalized leaves unit vectors untouched so restored sequences keep their
// exact bits.
func normalized(v geo.Vec3) (geo.Vec3, error) {
	if n := v.Norm(); math.Abs(n-1) <= unitTolerance {
		return v, nil
	}
	return v.Unit()
}

func indexSet(indices []int, n int) (map[int]struct{}, error) {
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
		}
		set[i] = struct{}{}
	}
	return set, nil
}
