// Package metrics holds the Prometheus collectors. They register with the
// default registry, which /metrics serves.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vetbridge"

var (
	// searchesTotal counts searches by the cascade level that produced results.
	// Labels: level (full, category, unfiltered, empty)
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Searches by the cascade level that produced the results",
	}, []string{"level"})

	// searchDegradedTotal counts searches answered below the full level.
	searchDegradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_degraded_total",
		Help:      "Searches answered by a relaxed cascade level",
	}, []string{"level"})

	// crisisInterceptsTotal counts crisis bundles returned.
	// Labels: source (message, assessment, recommend, check)
	crisisInterceptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crisis_intercepts_total",
		Help:      "Crisis bundles returned by what triggered them",
	}, []string{"source"})

	// collaboratorFallbacksTotal counts static fallbacks used in place of
	// generated text. Labels: step, reason (disabled, error, empty)
	collaboratorFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "triage",
		Name:      "collaborator_fallbacks_total",
		Help:      "Static fallbacks used instead of generated text",
	}, []string{"step", "reason"})

	// assessmentParseTotal counts assessment payload outcomes.
	// Labels: outcome (parsed, raw)
	assessmentParseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "triage",
		Name:      "assessment_parse_total",
		Help:      "Assessment payloads by parse outcome",
	}, []string{"outcome"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern and status",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	catalogEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "events_total",
		Help:      "Catalog changes applied by the directory watcher",
	}, []string{"kind"})
)

// RecordSearch records the level that answered a search.
func RecordSearch(level string, degraded bool) {
	searchesTotal.WithLabelValues(level).Inc()
	if degraded {
		searchDegradedTotal.WithLabelValues(level).Inc()
	}
}

// RecordCrisisIntercept records a crisis bundle returned because of source.
func RecordCrisisIntercept(source string) {
	crisisInterceptsTotal.WithLabelValues(source).Inc()
}

// RecordFallback records a static fallback used for step.
func RecordFallback(step, reason string) {
	collaboratorFallbacksTotal.WithLabelValues(step, reason).Inc()
}

// RecordAssessmentParse records whether an assessment payload parsed.
func RecordAssessmentParse(outcome string) {
	assessmentParseTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// RecordCatalogEvent records a watcher-driven catalog change.
func RecordCatalogEvent(kind string) {
	catalogEventsTotal.WithLabelValues(kind).Inc()
}
