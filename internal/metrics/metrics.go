// Package metrics defines the Prometheus collectors for evaluation runs and
// writes them as a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MaTriXy/c7score/report"
)

// Metrics holds all Prometheus collectors for evaluation runs.
type Metrics struct {
	registry *prometheus.Registry

	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	OverallScore       *prometheus.GaugeVec
	ComponentScore     *prometheus.GaugeVec
	ComponentErrors    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "c7score_evaluations_total",
				Help: "Total corpus evaluations by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "c7score_evaluation_duration_seconds",
				Help:    "Wall time of one corpus evaluation in seconds.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		OverallScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "c7score_overall_score",
				Help: "Latest overall score per library.",
			},
			[]string{"library"},
		),
		ComponentScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "c7score_component_score",
				Help: "Latest component score per library, on the overall scale.",
			},
			[]string{"library", "component"},
		),
		ComponentErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "c7score_component_errors_total",
				Help: "Components that failed to produce a score.",
			},
			[]string{"component"},
		),
	}

	m.registry.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.OverallScore,
		m.ComponentScore,
		m.ComponentErrors,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one finished report.
func (m *Metrics) Observe(r report.Report, elapsed time.Duration) {
	m.EvaluationDuration.Observe(elapsed.Seconds())
	if r.Error != "" {
		m.EvaluationsTotal.WithLabelValues("error").Inc()
	} else {
		m.EvaluationsTotal.WithLabelValues("ok").Inc()
		m.OverallScore.WithLabelValues(r.Library).Set(r.Overall)
	}

	for _, c := range r.Components {
		if c.Error != "" {
			m.ComponentErrors.WithLabelValues(c.Name).Inc()
			continue
		}
		m.ComponentScore.WithLabelValues(r.Library, c.Name).Set(c.Normalized)
	}
}

// WriteTextfile writes the current metric values to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
