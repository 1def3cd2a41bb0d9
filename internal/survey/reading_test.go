package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/gradetool/internal/geo"
)

const readingsYAML = `
- position: {longitude: 10, latitude: 45, altitude: 300}
  attitude:
    - [1, 0, 0]
    - [0, 1, 0]
    - [0, 0, 1]
- point: {x: 6378137, y: 0, z: 0}
  direction: {x: 0, y: 0, z: 3}
`

func TestParseReadingsYAML(t *testing.T) {
	t.Parallel()

	readings, err := ParseReadings([]byte(readingsYAML))
	require.NoError(t, err)
	require.Len(t, readings, 2)
	require.NotNil(t, readings[0].Attitude)
	assert.Equal(t, geo.Identity3, *readings[0].Attitude)
	assert.Equal(t, 45.0, readings[0].Position.Lat)
	assert.Equal(t, geo.Vec3{Z: 3}, *readings[1].Direction)

	s, err := FromReadings(readings)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, geo.Vec3{Z: -1}, s.At(0).Direction)
	assert.Equal(t, geo.Vec3{Z: 1}, s.At(1).Direction)
}

func TestParseReadingsJSON(t *testing.T) {
	t.Parallel()

	readings, err := ParseReadings([]byte(`[{"point":{"x":1,"y":2,"z":3},"direction":{"x":1,"y":0,"z":0}}]`))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, geo.Vec3{X: 1, Y: 2, Z: 3}, *readings[0].Point)
}

func TestFromReadingsErrors(t *testing.T) {
	t.Parallel()

	_, err := FromReadings([]Reading{{Point: &geo.Vec3{X: 1}}})
	assert.ErrorIs(t, err, ErrIncompleteReading)

	_, err = FromReadings([]Reading{{Position: &geo.Coordinate{Lat: 100}, Attitude: &geo.Identity3}})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)

	_, err = ParseReadings([]byte("- [unterminated"))
	assert.Error(t, err)
}
