// Package metrics exposes Prometheus collectors for the planner daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's collectors on a private registry, so several
// daemons can coexist in one test binary.
type Metrics struct {
	reg *prometheus.Registry

	analyses        *prometheus.CounterVec
	maxInterference prometheus.Histogram
	criticalPairs   prometheus.Counter
	catalogChannels prometheus.Gauge
	reloads         *prometheus.CounterVec
}

// New registers every collector, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vtxd_analyses_total",
			Help: "The number of handled analysis requests (per kind and outcome).",
		}, []string{"kind", "outcome"}),
		maxInterference: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vtxd_group_max_interference_percent",
			Help:    "The worst pairwise interference of each analyzed group.",
			Buckets: []float64{1, 5, 10, 15, 20, 28, 35, 50, 75, 100},
		}),
		criticalPairs: f.NewCounter(prometheus.CounterOpts{
			Name: "vtxd_critical_pairs_total",
			Help: "The number of critical channel pairs reported.",
		}),
		catalogChannels: f.NewGauge(prometheus.GaugeOpts{
			Name: "vtxd_catalog_channels",
			Help: "The number of channels in the loaded catalog.",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vtxd_reloads_total",
			Help: "The number of configuration reloads (per outcome).",
		}, []string{"outcome"}),
	}
}

// Analysis counts one request of the given kind. ok selects the outcome
// label.
func (m *Metrics) Analysis(kind string, ok bool) {
	m.analyses.With(prometheus.Labels{"kind": kind, "outcome": outcome(ok)}).Inc()
}

// Group records the aggregate of a completed group analysis.
func (m *Metrics) Group(maxInterference float64, criticalPairs int) {
	m.maxInterference.Observe(maxInterference)
	m.criticalPairs.Add(float64(criticalPairs))
}

// CatalogChannels sets the loaded channel count.
func (m *Metrics) CatalogChannels(n int) {
	m.catalogChannels.Set(float64(n))
}

func (m *Metrics) Reload(ok bool) {
	m.reloads.With(prometheus.Labels{"outcome": outcome(ok)}).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
