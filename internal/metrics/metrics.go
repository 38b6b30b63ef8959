// Package metrics records run counters on a private Prometheus registry and
// writes them in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rbh-core/hit"
	"rbh-core/rbh"
)

const namespace = "rbh"

// Metrics is the set of collectors for one process.
type Metrics struct {
	reg *prometheus.Registry

	hitsRead   *prometheus.CounterVec
	malformed  *prometheus.CounterVec
	accessions *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	pairs      prometheus.Counter
	duration   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		hitsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hits_read_total",
			Help:      "Hit rows indexed, by origin.",
		}, []string{"origin"}),
		malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_rows_total",
			Help:      "Hit rows skipped as malformed, by origin.",
		}, []string{"origin"}),
		accessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accessions_total",
			Help:      "Distinct query accessions indexed, by origin.",
		}, []string{"origin"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Per-accession resolutions, by terminal outcome.",
		}, []string{"outcome"}),
		pairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_accepted_total",
			Help:      "Distinct ortholog pairs accepted.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time per run phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
	}
	m.reg.MustRegister(m.hitsRead, m.malformed, m.accessions, m.outcomes, m.pairs, m.duration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveIndex records one loaded hit table.
func (m *Metrics) ObserveIndex(origin hit.Origin, accessions, hits, malformed int) {
	o := origin.String()
	m.hitsRead.WithLabelValues(o).Add(float64(hits))
	m.malformed.WithLabelValues(o).Add(float64(malformed))
	m.accessions.WithLabelValues(o).Add(float64(accessions))
}

// ObserveResult records the outcome counts of one batch.
func (m *Metrics) ObserveResult(st rbh.Stats) {
	for _, o := range rbh.AllOutcomes() {
		m.outcomes.WithLabelValues(o.String()).Add(float64(st.Count(o)))
	}
	m.pairs.Add(float64(st.Pairs))
}

// ObservePhase records how long phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.duration.WithLabelValues(phase).Observe(d.Seconds())
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
