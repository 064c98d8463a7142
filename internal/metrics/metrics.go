// Package metrics provides Prometheus metrics for feedback scoring,
// suggestion moderation and the HTTP surface.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
)

const namespace = "bookprepper"

// Metrics contains every BookPrepper collector.
type Metrics struct {
	registry *prometheus.Registry

	feedbackEvents      *prometheus.CounterVec
	legacyVotes         *prometheus.CounterVec
	scoreRecomputes     prometheus.Counter
	scoreValue          prometheus.Histogram
	moderationDecisions *prometheus.CounterVec
	statsCacheLookups   *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.feedbackEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_events_total",
			Help:      "Total number of feedback events recorded",
		},
		[]string{"dimension", "value"},
	)

	m.legacyVotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_votes_total",
			Help:      "Total number of legacy votes cast or changed",
		},
		[]string{"value"},
	)

	m.scoreRecomputes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "score_recomputes_total",
		Help:      "Total number of prep score recomputations",
	})

	m.scoreValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prep_score",
		Help:      "Distribution of recomputed prep scores",
		Buckets:   prometheus.LinearBuckets(-1, 0.25, 9),
	})

	m.moderationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_decisions_total",
			Help:      "Total number of suggestion moderation decisions",
		},
		[]string{"kind", "status"},
	)

	m.statsCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_cache_lookups_total",
			Help:      "Catalog stats cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// RecordFeedback counts one feedback event.
func (m *Metrics) RecordFeedback(d domain.Dimension, v domain.VoteValue) {
	m.feedbackEvents.WithLabelValues(string(d), string(v)).Inc()
}

// RecordLegacyVote counts one legacy vote upsert.
func (m *Metrics) RecordLegacyVote(v domain.VoteValue) {
	m.legacyVotes.WithLabelValues(string(v)).Inc()
}

// ScoreRecomputed implements scoring.Observer.
func (m *Metrics) ScoreRecomputed(s scoring.Summary) {
	m.scoreRecomputes.Inc()
	if s.Total > 0 {
		m.scoreValue.Observe(s.Score)
	}
}

// SuggestionResolved implements moderation.Observer.
func (m *Metrics) SuggestionResolved(kind domain.SuggestionKind, status domain.SuggestionStatus) {
	m.moderationDecisions.WithLabelValues(string(kind), string(status)).Inc()
}

// RecordStatsCacheLookup counts a stats cache hit or miss.
func (m *Metrics) RecordStatsCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.statsCacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.feedbackEvents.Describe(ch)
	m.legacyVotes.Describe(ch)
	m.scoreRecomputes.Describe(ch)
	m.scoreValue.Describe(ch)
	m.moderationDecisions.Describe(ch)
	m.statsCacheLookups.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.feedbackEvents.Collect(ch)
	m.legacyVotes.Collect(ch)
	m.scoreRecomputes.Collect(ch)
	m.scoreValue.Collect(ch)
	m.moderationDecisions.Collect(ch)
	m.statsCacheLookups.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
}
