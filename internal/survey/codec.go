package survey

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/woozymasta/gradetool/internal/geo"
)

// ErrMalformedTable is returned when a CSV export cannot be read back.
var ErrMalformedTable = errors.New("malformed sighting table")

// TableHeader is the column layout of a CSV export.
var TableHeader = []string{
	"point_id",
	"point_x", "point_y", "point_z",
	"direction_x", "direction_y", "direction_z",
}

// Marshal encodes the sequence as the persisted JSON blob.
func Marshal(sightings []Sighting) ([]byte, error) {
	if sightings == nil {
		sightings = []Sighting{}
	}
	return json.Marshal(sightings)
}

// Unmarshal decodes a persisted JSON blob. Identifiers must be present and
// unique.
func Unmarshal(data []byte) ([]Sighting, error) {
	var out []Sighting
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode sightings: %w", err)
	}
	for i, s := range out {
		if s.ID == uuid.Nil {
			return nil, fmt.Errorf("decode sightings: entry %d has no id", i)
		}
	}
	if err := checkUnique(out); err != nil {
		return nil, fmt.Errorf("decode sightings: %w", err)
	}
	return out, nil
}

// WriteTable writes the sequence as a CSV table of raw Cartesian components,
// one row per sighting with its identifier first.
func WriteTable(w io.Writer, sightings []Sighting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return err
	}

	row := make([]string, len(TableHeader))
	for _, s := range sightings {
		row[0] = s.ID.String()
		putVec(row[1:4], s.Point)
		putVec(row[4:7], s.Direction)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTable parses a table written by WriteTable.
func ReadTable(r io.Reader) ([]Sighting, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(TableHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedTable, err)
	}
	for i, name := range TableHeader {
		if header[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrMalformedTable, i+1, header[i], name)
		}
	}

	var out []Sighting
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}

		id, err := uuid.Parse(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}
		point, err := parseVec(rec[1:4])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}
		dir, err := parseVec(rec[4:7])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}
		out = append(out, Sighting{ID: id, Point: point, Direction: dir})
	}

	if err := checkUnique(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	return out, nil
}

func putVec(dst []string, v geo.Vec3) {
	dst[0] = strconv.FormatFloat(v.X, 'g', -1, 64)
	dst[1] = strconv.FormatFloat(v.Y, 'g', -1, 64)
	dst[2] = strconv.FormatFloat(v.Z, 'g', -1, 64)
}

func parseVec(fields []string) (geo.Vec3, error) {
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geo.Vec3{}, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return geo.Vec3{}, fmt.Errorf("value %q is not finite", f)
		}
		xyz[i] = v
	}
	return geo.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
