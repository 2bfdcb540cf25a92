package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes used as the "outcome" label
const (
	outcomeFound          = "found"
	outcomeNoPath         = "no_path"
	outcomeIterationLimit = "iteration_limit"
	outcomeInvalid        = "invalid"
)

// NavigatorMetrics collects Prometheus metrics for graph generation and path searches.
// All metrics are namespaced with "navigator". A nil *NavigatorMetrics records nothing.
//
//   - searches_total (counter): path searches by algorithm and outcome.
//   - search_expanded_nodes (histogram): nodes taken off the open set per search.
//   - search_latency_ms (histogram): wall time per search.
//   - graph_nodes / graph_traversable_nodes (gauge): size of the current graph.
//   - connections_total (counter): candidate edges by result (accepted/rejected).
//   - agents (gauge): agents spawned by the manager.
type NavigatorMetrics struct {
	searches      *prometheus.CounterVec
	expanded      *prometheus.HistogramVec
	searchLatency *prometheus.HistogramVec

	graphNodes       prometheus.Gauge
	traversableNodes prometheus.Gauge
	connections      *prometheus.CounterVec
	agents           prometheus.Gauge
}

// NewNavigatorMetrics creates and registers all navigator metrics with the registry.
// A nil registry means prometheus.DefaultRegisterer.
func NewNavigatorMetrics(registry prometheus.Registerer) *NavigatorMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &NavigatorMetrics{
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigator",
			Name:      "searches_total",
			Help:      "Path searches by algorithm and outcome",
		}, []string{"algorithm", "outcome"}),
		expanded: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "navigator",
			Name:      "search_expanded_nodes",
			Help:      "Nodes removed from the open set during one search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"algorithm"}),
		searchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "navigator",
			Name:      "search_latency_ms",
			Help:      "Path search duration in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"algorithm"}),
		graphNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "navigator",
			Name:      "graph_nodes",
			Help:      "Nodes in the current navigation graph",
		}),
		traversableNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "navigator",
			Name:      "graph_traversable_nodes",
			Help:      "Traversable nodes in the current navigation graph",
		}),
		connections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigator",
			Name:      "connections_total",
			Help:      "Candidate connections evaluated during grid generation",
		}, []string{"result"}),
		agents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "navigator",
			Name:      "agents",
			Help:      "Agents spawned by the manager",
		}),
	}
}

// RecordSearch observes one finished search
func (m *NavigatorMetrics) RecordSearch(algorithm, outcome string, expanded int, latency time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(algorithm, outcome).Inc()
	m.expanded.WithLabelValues(algorithm).Observe(float64(expanded))
	m.searchLatency.WithLabelValues(algorithm).Observe(float64(latency.Microseconds()) / 1000)
}

// RecordGraph sets the size gauges for a freshly built graph
func (m *NavigatorMetrics) RecordGraph(g *NavGraph) {
	if m == nil || g == nil {
		return
	}
	m.graphNodes.Set(float64(len(g.Nodes)))
	m.traversableNodes.Set(float64(len(g.TraversableNodes)))
}

// RecordConnection counts one evaluated candidate edge
func (m *NavigatorMetrics) RecordConnection(accepted bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.connections.WithLabelValues(result).Inc()
}

// SetAgents sets the agent gauge
func (m *NavigatorMetrics) SetAgents(n int) {
	if m == nil {
		return
	}
	m.agents.Set(float64(n))
}
