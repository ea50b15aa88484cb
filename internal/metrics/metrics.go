// Package metrics holds the prometheus collectors for the project graph and
// the action runner. A nil *Collectors is valid and records nothing, so
// library callers and tests can skip wiring metrics entirely.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "monogrid"

// Collectors groups every metric the orchestrator exports.
type Collectors struct {
	ActionsTotal    *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	ProjectsLoaded  prometheus.Gauge
	DiscoveryCache  *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	ActionsInFlight prometheus.Gauge
}

// New creates unregistered collectors.
func New() *Collectors {
	return &Collectors{
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "runner",
				Name:      "actions_total",
				Help:      "number of actions that reached a terminal status",
			}, []string{"kind", "status"}),
		ActionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "runner",
				Name:      "action_duration_seconds",
				Help:      "bucketed histogram of action execution time",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
			}, []string{"kind"}),
		ProjectsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "project_graph",
				Name:      "projects_loaded",
				Help:      "number of projects materialized in the project graph",
			}),
		DiscoveryCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "project_graph",
				Name:      "discovery_cache_total",
				Help:      "glob discovery lookups by result",
			}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "runner",
				Name:      "run_duration_seconds",
				Help:      "bucketed histogram of whole run time",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
			}),
		ActionsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "runner",
				Name:      "actions_in_flight",
				Help:      "number of actions currently executing",
			}),
	}
}

// Register adds every collector to the registry.
func (c *Collectors) Register(registry prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		c.ActionsTotal, c.ActionDuration, c.ProjectsLoaded,
		c.DiscoveryCache, c.RunDuration, c.ActionsInFlight,
	} {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// ObserveAction records one finished action.
func (c *Collectors) ObserveAction(kind, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.ActionsTotal.WithLabelValues(kind, status).Inc()
	c.ActionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ActionStarted increments the in-flight gauge.
func (c *Collectors) ActionStarted() {
	if c == nil {
		return
	}
	c.ActionsInFlight.Inc()
}

// ActionFinished decrements the in-flight gauge.
func (c *Collectors) ActionFinished() {
	if c == nil {
		return
	}
	c.ActionsInFlight.Dec()
}

// ObserveRun records the whole run duration.
func (c *Collectors) ObserveRun(d time.Duration) {
	if c == nil {
		return
	}
	c.RunDuration.Observe(d.Seconds())
}

// SetProjectsLoaded updates the loaded project gauge.
func (c *Collectors) SetProjectsLoaded(n int) {
	if c == nil {
		return
	}
	c.ProjectsLoaded.Set(float64(n))
}

// DiscoveryLookup counts a glob discovery as a cache "hit" or "miss".
func (c *Collectors) DiscoveryLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.DiscoveryCache.WithLabelValues(result).Inc()
}
