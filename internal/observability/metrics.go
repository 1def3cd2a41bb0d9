// Package observability exposes survey activity as Prometheus metrics.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/woozymasta/gradetool/internal/survey"
)

// SurveyCollector bundles the survey metrics and serves them over HTTP.
type SurveyCollector struct {
	gatherer prometheus.Gatherer

	Mutations *prometheus.CounterVec

	Sightings           prometheus.Gauge
	PathDistance        prometheus.Gauge
	ElevationGain       prometheus.Gauge
	ConvergenceAltitude prometheus.Gauge
	Converged           prometheus.Gauge
}

// NewSurveyCollector registers the survey metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewSurveyCollector(reg prometheus.Registerer) (*SurveyCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	mutations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_mutations_total",
		Help: "Survey mutations, labeled by operation and result.",
	}, []string{"op", "result"}), "survey_mutations_total")
	if err != nil {
		return nil, err
	}

	gauge := func(name, help string) (prometheus.Gauge, error) {
		return registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help}), name)
	}

	sightings, err := gauge("survey_sightings", "Current number of sightings in the survey.")
	if err != nil {
		return nil, err
	}
	distance, err := gauge("survey_path_distance_meters", "Length of the walked path.")
	if err != nil {
		return nil, err
	}
	gain, err := gauge("survey_elevation_gain_meters", "Altitude of the last sighting minus the first.")
	if err != nil {
		return nil, err
	}
	altitude, err := gauge("survey_convergence_altitude_meters", "Altitude of the convergence point, 0 when unavailable.")
	if err != nil {
		return nil, err
	}
	converged, err := gauge("survey_converged", "1 when the sighting rays converge on a point.")
	if err != nil {
		return nil, err
	}

	return &SurveyCollector{
		gatherer:            gatherer,
		Mutations:           mutations,
		Sightings:           sightings,
		PathDistance:        distance,
		ElevationGain:       gain,
		ConvergenceAltitude: altitude,
		Converged:           converged,
	}, nil
}

// RecordMutation counts one applied or rejected operation.
func (c *SurveyCollector) RecordMutation(op string, err error) {
	if c == nil || c.Mutations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Mutations.WithLabelValues(op, result).Inc()
}

// SetSurvey mirrors the current survey into the gauges.
func (c *SurveyCollector) SetSurvey(sightings int, stats survey.Stats) {
	if c == nil {
		return
	}
	c.Sightings.Set(float64(sightings))
	c.PathDistance.Set(stats.PathDistance)
	c.ElevationGain.Set(stats.ElevationGain)
	c.ConvergenceAltitude.Set(stats.ConvergenceAltitude)
	if stats.Target != nil {
		c.Converged.Set(1)
	} else {
		c.Converged.Set(0)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SurveyCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
