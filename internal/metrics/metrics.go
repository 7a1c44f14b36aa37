package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the domain metrics of the reporting pipeline.
// A nil *Collector is valid and records nothing, which keeps tests free of registries.
type Collector struct {
	cacheLookups *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	artifacts    *prometheus.CounterVec
	buildLatency *prometheus.HistogramVec
}

// New creates the collector and registers it with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_cache_lookups_total",
				Help: "Dataset cache lookups by result (hit, miss, error).",
			},
			[]string{"result"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dataset_load_duration_seconds",
				Help:    "Time spent reading and joining the source tables.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		artifacts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artifacts_generated_total",
				Help: "Generated export artifacts by kind (pdf, csv, xlsx) and status.",
			},
			[]string{"kind", "status"},
		),
		buildLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "artifact_build_duration_seconds",
				Help:    "Time spent building an export artifact.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	for _, col := range []prometheus.Collector{c.cacheLookups, c.loadDuration, c.artifacts, c.buildLatency} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) CacheHit() {
	if c != nil {
		c.cacheLookups.WithLabelValues("hit").Inc()
	}
}

func (c *Collector) CacheMiss() {
	if c != nil {
		c.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (c *Collector) CacheError() {
	if c != nil {
		c.cacheLookups.WithLabelValues("error").Inc()
	}
}

// ObserveLoad records one load attempt.
func (c *Collector) ObserveLoad(d time.Duration, err error) {
	if c != nil {
		c.loadDuration.WithLabelValues(status(err)).Observe(d.Seconds())
	}
}

// ObserveArtifact records one artifact build of the given kind.
func (c *Collector) ObserveArtifact(kind string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.artifacts.WithLabelValues(kind, status(err)).Inc()
	c.buildLatency.WithLabelValues(kind).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
