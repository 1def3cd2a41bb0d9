package survey

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/gradetool/internal/geo"
)

func ids(s Survey) []uuid.UUID {
	out := make([]uuid.UUID, 0, s.Len())
	for _, sg := range s.Sightings() {
		out = append(out, sg.ID)
	}
	return out
}

func mutate(t *testing.T, s Survey, op Operation) Survey {
	t.Helper()
	next, stats, err := Mutate(s, op)
	require.NoError(t, err)
	assert.Equal(t, next.Stats(), stats)
	return next
}

// targetSurvey has three sightings aimed at one point two kilometres up.
func targetSurvey(t *testing.T) (Survey, geo.Vec3) {
	t.Helper()
	target := geo.ToCartesian(geo.Coordinate{Lon: 10, Lat: 45, Alt: 2000})
	var s Survey
	for _, c := range []geo.Coordinate{
		{Lon: 9.99, Lat: 44.99, Alt: 300},
		{Lon: 10.01, Lat: 44.995, Alt: 320},
		{Lon: 10.0, Lat: 45.012, Alt: 280},
	} {
		s = mutate(t, s, Add(rayThrough(t, geo.ToCartesian(c), target)))
	}
	return s, target
}

func TestEmptySurvey(t *testing.T) {
	t.Parallel()

	var s Survey
	assert.Zero(t, s.Len())
	assert.Equal(t, Stats{}, s.Stats())
	assert.Empty(t, s.Sightings())
}

func TestAddReading(t *testing.T) {
	t.Parallel()

	s := mutate(t, Survey{}, AddReading(geo.Coordinate{Lon: 1, Lat: 2, Alt: 3}, geo.Identity3))
	require.Equal(t, 1, s.Len())
	assert.NotEqual(t, uuid.Nil, s.At(0).ID)
	assert.Equal(t, geo.Vec3{Z: -1}, s.At(0).Direction)
	assert.Equal(t, Stats{}, s.Stats(), "one sighting has no statistics")

	pos := s.At(0).Coordinate()
	assert.InDelta(t, 1, pos.Lon, 1e-9)
	assert.InDelta(t, 2, pos.Lat, 1e-9)
}

func TestAddReadingRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	var s Survey
	_, _, err := Mutate(s, AddReading(geo.Coordinate{Lat: 91}, geo.Identity3))
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)

	_, _, err = Mutate(s, AddReading(geo.Coordinate{}, geo.Matrix3{}))
	assert.ErrorIs(t, err, geo.ErrDegenerateAttitude)

	_, _, err = Mutate(s, Add(Sighting{ID: uuid.New()}))
	assert.ErrorIs(t, err, geo.ErrZeroVector)
}

func TestStatsTrackConvergence(t *testing.T) {
	t.Parallel()

	s, target := targetSurvey(t)
	stats := s.Stats()

	want := geo.ToGeodetic(target)
	require.NotNil(t, stats.Target)
	assert.InDelta(t, want.Alt, stats.ConvergenceAltitude, 1e-4)
	assert.InDelta(t, want.Lon, stats.Target.Lon, 1e-9)
	assert.InDelta(t, want.Lat, stats.Target.Lat, 1e-9)
	assert.Equal(t, PathLength(s.Sightings()), stats.PathDistance)
	assert.InDelta(t, -20, stats.ElevationGain, 1e-6)
}

func TestStatsWithoutConvergence(t *testing.T) {
	t.Parallel()

	var s Survey
	s = mutate(t, s, AddReading(geo.Coordinate{Alt: 0}, geo.Identity3))
	s = mutate(t, s, AddReading(geo.Coordinate{Alt: 100}, geo.Identity3))

	stats := s.Stats()
	assert.InDelta(t, 100, stats.PathDistance, 1e-6)
	assert.InDelta(t, 100, stats.ElevationGain, 1e-6)
	assert.Zero(t, stats.ConvergenceAltitude)
	assert.Nil(t, stats.Target)
}

func TestAddThenRemoveRestoresStats(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	before := s.Stats()

	extra := mustSighting(t, geo.ToCartesian(geo.Coordinate{Lon: 10.02, Lat: 45.02, Alt: 900}), geo.Vec3{X: 1, Y: 1})
	for i := 0; i < 25; i++ {
		s = mutate(t, s, Add(extra))
		assert.NotEqual(t, before, s.Stats())
		s = mutate(t, s, Remove(s.Len()-1))
	}
	assert.Equal(t, before, s.Stats())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	all := ids(s)

	next := mutate(t, s, Remove(2, 0, 2))
	assert.Equal(t, []uuid.UUID{all[1]}, ids(next))
	assert.Equal(t, Stats{}, next.Stats())
	assert.Equal(t, all, ids(s), "original survey is untouched")

	_, _, err := Mutate(s, Remove(3))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = Mutate(s, Remove(-1))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMove(t *testing.T) {
	t.Parallel()

	var s Survey
	for i := 0; i < 5; i++ {
		s = mutate(t, s, AddReading(geo.Coordinate{Lon: float64(i), Alt: float64(10 * i)}, geo.Identity3))
	}
	o := ids(s)

	cases := []struct {
		name string
		from []int
		to   int
		want []uuid.UUID
	}{
		{"first to end", []int{0}, 5, []uuid.UUID{o[1], o[2], o[3], o[4], o[0]}},
		{"last to front", []int{4}, 0, []uuid.UUID{o[4], o[0], o[1], o[2], o[3]}},
		{"forward one", []int{1}, 3, []uuid.UUID{o[0], o[2], o[1], o[3], o[4]}},
		{"in place", []int{2}, 2, o},
		{"in place after", []int{2}, 3, o},
		{"set", []int{3, 0}, 2, []uuid.UUID{o[1], o[0], o[3], o[2], o[4]}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := mutate(t, s, Move(tc.from, tc.to))
			if diff := cmp.Diff(tc.want, ids(next)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, Compute(next.Sightings()), next.Stats())
		})
	}

	_, _, err := Mutate(s, Move([]int{0}, 6))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = Mutate(s, Move([]int{5}, 0))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMoveReversesElevationGain(t *testing.T) {
	t.Parallel()

	var s Survey
	s = mutate(t, s, AddReading(geo.Coordinate{Alt: 10}, geo.Identity3))
	s = mutate(t, s, AddReading(geo.Coordinate{Lat: 0.001, Alt: 70}, geo.Identity3))
	gain := s.Stats().ElevationGain

	s = mutate(t, s, Move([]int{1}, 0))
	assert.InDelta(t, -gain, s.Stats().ElevationGain, 1e-9)
}

func TestClear(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	s = mutate(t, s, Clear())
	assert.Zero(t, s.Len())
	assert.Equal(t, Stats{}, s.Stats())
}

func TestDuplicateIDsRejected(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	_, _, err := Mutate(s, Add(s.At(1)))
	assert.ErrorIs(t, err, ErrDuplicateID)

	dup := s.At(0)
	_, err = New([]Sighting{dup, dup})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewKeepsSequence(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	restored, err := New(s.Sightings())
	require.NoError(t, err)

	if diff := cmp.Diff(s.Sightings(), restored.Sightings()); diff != "" {
		t.Errorf("restored sequence mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, s.Stats(), restored.Stats())
}

func TestSightingsReturnsCopy(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	got := s.Sightings()
	got[0] = Sighting{}
	assert.NotEqual(t, uuid.Nil, s.At(0).ID)
}

func TestAppend(t *testing.T) {
	t.Parallel()

	full, _ := targetSurvey(t)
	all := full.Sightings()

	s := mutate(t, Survey{}, Add(all[0]))
	s = mutate(t, s, Append(all[1:]))
	assert.Equal(t, ids(full), ids(s))
	assert.Equal(t, full.Stats(), s.Stats())

	_, _, err := Mutate(s, Append([]Sighting{{ID: uuid.New(), Point: all[0].Point}}))
	assert.ErrorIs(t, err, geo.ErrZeroVector)
	_, _, err = Mutate(s, Append(all[:1]))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestAddRejectsBadPoints(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	up := geo.Vec3{Z: 1}
	cases := map[string]struct {
		point geo.Vec3
		want  error
	}{
		"nan":      {geo.Vec3{X: math.NaN()}, geo.ErrNonFinite},
		"inf":      {geo.Vec3{Y: math.Inf(-1)}, geo.ErrNonFinite},
		"overflow": {geo.Vec3{X: 1e200}, geo.ErrNonFinite},
		"too far":  {geo.Vec3{Z: 2 * MaxPointNorm}, ErrPointOutOfRange},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			bad := Sighting{Point: tc.point, Direction: up}

			next, stats, err := Mutate(s, Add(bad))
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, s.Len(), next.Len())
			assert.Equal(t, s.Stats(), stats)

			_, _, err = Mutate(s, Append([]Sighting{bad}))
			assert.ErrorIs(t, err, tc.want)

			_, err = New([]Sighting{bad})
			assert.ErrorIs(t, err, tc.want)

			_, err = NewSighting(tc.point, up)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReadingRejectsNonRotation(t *testing.T) {
	t.Parallel()

	scaled := geo.Matrix3{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	_, err := Reading{Position: &geo.Coordinate{Lon: 1, Lat: 2}, Attitude: &scaled}.Op()
	assert.ErrorIs(t, err, geo.ErrNotRotation)
}
