package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"specdash/internal/domain"
)

const Namespace = "specdash"

// Metrics holds the collectors of one orchestrator process. It uses its own
// registry so several instances can coexist (tests).
type Metrics struct {
	registry *prometheus.Registry

	runsStarted  prometheus.Counter
	runsFinished *prometheus.CounterVec
	runDuration  prometheus.Histogram
	testsTotal   *prometheus.CounterVec
	runsRunning  prometheus.Gauge
	httpRequests *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_started_total",
			Help:      "Number of test runs started",
		}),
		runsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_finished_total",
			Help:      "Number of test runs that reached a terminal state",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of finished test runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
		}),
		testsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tests_total",
			Help:      "Executed tests by outcome",
		}, []string{"status"}),
		runsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "runs_running",
			Help:      "Test runs currently in the running state",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// RunStarted records a queued run
func (m *Metrics) RunStarted() {
	m.runsStarted.Inc()
	m.runsRunning.Inc()
}

// RunFinished records a terminal run and its test outcomes
func (m *Metrics) RunFinished(run domain.TestRun) {
	m.runsRunning.Dec()
	m.runsFinished.WithLabelValues(string(run.Status)).Inc()
	if run.EndTime != nil {
		m.runDuration.Observe(run.EndTime.Sub(run.StartTime).Seconds())
	}
	m.testsTotal.WithLabelValues(string(domain.TestPassed)).Add(float64(run.Summary.Passed))
	m.testsTotal.WithLabelValues(string(domain.TestFailed)).Add(float64(run.Summary.Failed))
	m.testsTotal.WithLabelValues(string(domain.TestSkipped)).Add(float64(run.Summary.Skipped))
}

// RecordRequest counts one served HTTP request
func (m *Metrics) RecordRequest(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
