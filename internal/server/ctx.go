package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/gradetool/internal/config"
	"github.com/woozymasta/gradetool/internal/grade"
	"github.com/woozymasta/gradetool/internal/observability"
	"github.com/woozymasta/gradetool/internal/survey"
)

// Surveyor is the live survey the handlers read and mutate.
type Surveyor interface {
	Apply(ctx context.Context, op survey.Operation) (survey.Stats, error)
	Snapshot() survey.Survey
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Survey    Surveyor
	Collector *observability.SurveyCollector

	mu        sync.Mutex
	debouncer *grade.Debouncer
}

// NewServerContext wires the handlers to a survey session. collector may be nil.
func NewServerContext(cfg *config.Config, sv Surveyor, collector *observability.SurveyCollector) *ServerContext {
	log.Info().
		Str("grade_units", string(cfg.Display.GradeUnits)).
		Float64("debounce_percent", cfg.Display.DebouncePercent).
		Int("sightings", sv.Snapshot().Len()).
		Msg("Server context initialized")

	return &ServerContext{
		Config:    cfg,
		Survey:    sv,
		Collector: collector,
		debouncer: grade.NewDebouncer(cfg.Display.DebouncePercent),
	}
}

// Routes registers every handler on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/survey", s.HandleSurvey)
	mux.HandleFunc("DELETE /api/survey", s.HandleClear)
	mux.HandleFunc("POST /api/sightings", s.HandleAddSighting)
	mux.HandleFunc("POST /api/sightings/remove", s.HandleRemove)
	mux.HandleFunc("POST /api/sightings/move", s.HandleMove)
	mux.HandleFunc("GET /api/survey/export.csv", s.HandleExportCSV)
	mux.HandleFunc("POST /api/survey/import", s.HandleImport)
	mux.HandleFunc("GET /api/survey/geojson", s.HandleGeoJSON)
	mux.HandleFunc("POST /api/grade", s.HandleGrade)
	if s.Collector != nil {
		mux.Handle("GET /metrics", s.Collector.Handler())
	}
	return mux
}
