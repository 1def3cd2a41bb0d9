package survey

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/gradetool/internal/geo"
)

func TestBlobRoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	data, err := Marshal(s.Sightings())
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	if diff := cmp.Diff(s.Sightings(), got); diff != "" {
		t.Errorf("blob round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBlobLayout(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("4f1c2d7e-8a0b-4c3d-9e5f-6a7b8c9d0e1f")
	data, err := Marshal([]Sighting{{
		ID:        id,
		Point:     geo.Vec3{X: 1, Y: 2, Z: 3},
		Direction: geo.Vec3{Z: -1},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": "4f1c2d7e-8a0b-4c3d-9e5f-6a7b8c9d0e1f",
		"point": {"x": 1, "y": 2, "z": 3},
		"direction": {"x": 0, "y": 0, "z": -1}
	}]`, string(data))

	empty, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestUnmarshalRejectsBadBlobs(t *testing.T) {
	t.Parallel()

	id := uuid.New().String()
	bad := map[string]string{
		"garbage":   "not json",
		"object":    `{"id": "x"}`,
		"no id":     `[{"point": {"x": 1}, "direction": {"z": 1}}]`,
		"bad id":    `[{"id": "nope", "point": {"x": 1}, "direction": {"z": 1}}]`,
		"duplicate": `[{"id": "` + id + `", "direction": {"z": 1}}, {"id": "` + id + `", "direction": {"z": 1}}]`,
	}
	for name, blob := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal([]byte(blob))
			assert.Error(t, err)
		})
	}
}

func TestRestoreRejectsOverflowingPoint(t *testing.T) {
	t.Parallel()

	blob := `[{"id": "` + uuid.New().String() + `", "point": {"x": 1e200, "y": 0, "z": 0}, "direction": {"z": 1}}]`
	sightings, err := Unmarshal([]byte(blob))
	require.NoError(t, err)

	_, err = New(sightings)
	assert.ErrorIs(t, err, geo.ErrNonFinite)
}

func TestTableRoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, s.Sightings()))

	got, err := ReadTable(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(s.Sightings(), got); diff != "" {
		t.Errorf("table round trip mismatch (-want +got):\n%s", diff)
	}

	restored, err := New(got)
	require.NoError(t, err)
	assert.Equal(t, s.Stats(), restored.Stats())
}

func TestTableLayout(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []Sighting{{
		ID:        id,
		Point:     geo.Vec3{X: 6378137, Y: -0.5, Z: 1e-7},
		Direction: geo.Vec3{X: 0.6, Y: 0.8},
	}}))

	want := "point_id,point_x,point_y,point_z,direction_x,direction_y,direction_z\n" +
		"00000000-0000-4000-8000-000000000001,6.378137e+06,-0.5,1e-07,0.6,0.8,0\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteTable(&buf, nil))
	assert.Equal(t, strings.Join(TableHeader, ",")+"\n", buf.String())
}

func TestReadTableErrors(t *testing.T) {
	t.Parallel()

	header := strings.Join(TableHeader, ",") + "\n"
	id := uuid.New().String()
	bad := map[string]string{
		"empty":         "",
		"wrong header":  "id,x,y,z,dx,dy,dz\n",
		"short row":     header + id + ",1,2,3\n",
		"bad id":        header + "abc,1,2,3,0,0,1\n",
		"bad number":    header + id + ",1,two,3,0,0,1\n",
		"duplicate ids": header + id + ",1,2,3,0,0,1\n" + id + ",4,5,6,0,0,1\n",
		"nan point":     header + id + ",NaN,2,3,0,0,1\n",
		"inf direction": header + id + ",1,2,3,0,0,+Inf\n",
	}
	for name, table := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(table))
			assert.ErrorIs(t, err, ErrMalformedTable)
		})
	}

	got, err := ReadTable(strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReportAndGeoJSON(t *testing.T) {
	t.Parallel()

	s, _ := targetSurvey(t)
	report := s.Report()
	require.Len(t, report.Sightings, 3)
	require.Len(t, report.Profile, 3)
	assert.Equal(t, s.Stats(), report.Stats)
	assert.Equal(t, s.At(1).ID, report.Sightings[1].ID)
	assert.InDelta(t, 10.01, report.Sightings[1].Position.Lon, 1e-9)

	fc := s.GeoJSON()
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 5)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.Type)
	assert.Equal(t, "Point", fc.Features[1].Geometry.Type)
	assert.Equal(t, "target", fc.Features[4].Properties["kind"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"LineString"`)

	var empty Survey
	assert.Empty(t, empty.GeoJSON().Features)
}
