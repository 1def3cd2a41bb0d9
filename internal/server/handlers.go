// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/gradetool/internal/geo"
	"github.com/woozymasta/gradetool/internal/grade"
	"github.com/woozymasta/gradetool/internal/survey"
)

const maxBodyBytes = 1 << 20

// RemoveRequest names positions to delete.
type RemoveRequest struct {
	Indices []int `json:"indices"`
}

// MoveRequest relocates positions before the element at To.
type MoveRequest struct {
	From []int `json:"from"`
	To   int   `json:"to"`
}

// GradeRequest carries a pitch in radians or a full attitude matrix.
type GradeRequest struct {
	Pitch    *float64     `json:"pitch,omitempty"`
	Attitude *geo.Matrix3 `json:"attitude,omitempty"`
	Units    string       `json:"units,omitempty"`
}

// GradeResponse is a grade in every unit plus its display string.
type GradeResponse struct {
	Radians float64 `json:"radians"`
	Degrees float64 `json:"degrees"`
	Percent float64 `json:"percent"`
	Display string  `json:"display"`
	Flipped bool    `json:"flipped"`
}

// HandleSurvey serves the current sightings, statistics and profile.
func (s *ServerContext) HandleSurvey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Survey.Snapshot().Report())
}

// HandleAddSighting appends a ray, or a reading turned into one.
func (s *ServerContext) HandleAddSighting(w http.ResponseWriter, r *http.Request) {
	var req survey.Reading
	if !decodeJSON(w, r, &req) {
		return
	}

	op, err := req.Op()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.apply(w, r, op, http.StatusCreated)
}

// HandleRemove deletes sightings by position.
func (s *ServerContext) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req RemoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.apply(w, r, survey.Remove(req.Indices...), http.StatusOK)
}

// HandleMove reorders sightings.
func (s *ServerContext) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.apply(w, r, survey.Move(req.From, req.To), http.StatusOK)
}

// HandleClear removes every sighting.
func (s *ServerContext) HandleClear(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, survey.Clear(), http.StatusOK)
}

// HandleExportCSV streams the sightings as a table.
func (s *ServerContext) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="survey.csv"`)
	if err := survey.WriteTable(w, s.Survey.Snapshot().Sightings()); err != nil {
		log.Error().Err(err).Msg("CSV export failed")
	}
}

// HandleImport reads a CSV table. mode=append keeps the current sightings,
// anything else replaces them.
func (s *ServerContext) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	sightings, err := survey.ReadTable(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var op survey.Operation
	switch mode := r.URL.Query().Get("mode"); mode {
	case "append":
		op = survey.Append(sightings)
	case "", "replace":
		op = survey.Replace(sightings)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown import mode %q", mode))
		return
	}
	s.apply(w, r, op, http.StatusOK)
}

// HandleGeoJSON serves the path, sightings and target for map display.
func (s *ServerContext) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	writeBody(w, http.StatusOK, "application/geo+json", s.Survey.Snapshot().GeoJSON())
}

// HandleGrade converts a pitch or attitude into a grade. Successive calls
// share one debouncer, so Flipped reports uphill/downhill changes.
func (s *ServerContext) HandleGrade(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	units := s.Config.Display.GradeUnits
	if req.Units != "" {
		u, err := grade.ParseUnits(req.Units)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		units = u
	}

	var g grade.Grade
	switch {
	case req.Attitude != nil:
		if err := req.Attitude.CheckRotation(geo.RotationTolerance); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		g = grade.FromAttitude(*req.Attitude)
	case req.Pitch != nil:
		g = grade.FromPitch(*req.Pitch)
	default:
		writeError(w, http.StatusBadRequest, errors.New("need pitch or attitude"))
		return
	}

	s.mu.Lock()
	flipped := s.debouncer.Update(g)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, GradeResponse{
		Radians: g.Radians(),
		Degrees: g.Degrees(),
		Percent: g.Percent(),
		Display: grade.Format(g, units),
		Flipped: flipped,
	})
}

func (s *ServerContext) apply(w http.ResponseWriter, r *http.Request, op survey.Operation, status int) {
	if _, err := s.Survey.Apply(r.Context(), op); err != nil {
		code := http.StatusInternalServerError
		if isInputError(err) {
			code = http.StatusBadRequest
		} else {
			log.Error().Err(err).Str("op", op.Name()).Msg("Survey mutation failed")
		}
		writeError(w, code, err)
		return
	}
	writeJSON(w, status, s.Survey.Snapshot().Report())
}

func isInputError(err error) bool {
	for _, target := range []error{
		survey.ErrIndexOutOfRange,
		survey.ErrDuplicateID,
		survey.ErrPointOutOfRange,
		geo.ErrZeroVector,
		geo.ErrNonFinite,
		geo.ErrNotRotation,
		geo.ErrDegenerateAttitude,
		geo.ErrInvalidCoordinate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	writeBody(w, status, "application/json", v)
}

// writeBody encodes v before anything is sent, so an encoding failure still
// reaches the client as a 500.
func writeBody(w http.ResponseWriter, status int, contentType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to encode response")
		status, contentType = http.StatusInternalServerError, "application/json"
		data, _ = json.Marshal(map[string]string{"error": fmt.Sprintf("encode response: %v", err)})
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
