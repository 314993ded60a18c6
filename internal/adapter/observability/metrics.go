package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Prediction outcome paths.
const (
	PathModel         = "model"
	PathParseFallback = "parse_fallback"
	PathCallFallback  = "call_fallback"
	PathLocalFallback = "local_fallback"
	PathFailed        = "failed"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30, 60},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "operation"},
	)
	AICircuitState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ai_circuit_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"breaker"},
	)

	PredictionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "predictions_in_flight",
			Help: "Number of predictions currently processing",
		},
	)
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Predictions by outcome path",
		},
		[]string{"path"},
	)
	ImageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_image_failures_total",
			Help: "Failed portrait generations by kind",
		},
		[]string{"kind"},
	)
	ConfidenceHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_confidence_score",
			Help:    "Distribution of stored confidence_score",
			Buckets: []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
		},
	)
	PromptTokens = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prediction_prompt_tokens",
			Help: "Prompt tokens of the most recent request per prompt variant",
		},
		[]string{"variant"},
	)
	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"scope"},
	)
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_events_published_total",
			Help: "Prediction events by publish result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			AICircuitState,
			PredictionsInFlight,
			PredictionsTotal,
			ImageFailuresTotal,
			ConfidenceHistogram,
			PromptTokens,
			RateLimitedTotal,
			EventsPublishedTotal,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// StartPrediction marks a prediction as in flight.
func StartPrediction() { PredictionsInFlight.Inc() }

// FinishPrediction records the outcome path of an in-flight prediction.
func FinishPrediction(path string) {
	PredictionsInFlight.Dec()
	PredictionsTotal.WithLabelValues(path).Inc()
}

// RecordLocalFallback counts a prediction written by the requester's last tier.
func RecordLocalFallback() { PredictionsTotal.WithLabelValues(PathLocalFallback).Inc() }

// ObserveConfidence records a stored confidence score; out-of-range values are skipped.
func ObserveConfidence(score float64) {
	if score >= 0 && score <= 1 {
		ConfidenceHistogram.Observe(score)
	}
}

// RecordImageFailure counts a swallowed image generation failure.
func RecordImageFailure(kind string) { ImageFailuresTotal.WithLabelValues(kind).Inc() }

// SetPromptTokens records the token size of the latest prompt for variant.
func SetPromptTokens(variant string, n int) { PromptTokens.WithLabelValues(variant).Set(float64(n)) }

// SetCircuitState publishes a breaker state as its numeric value.
func SetCircuitState(breaker string, state int) {
	AICircuitState.WithLabelValues(breaker).Set(float64(state))
}

// RecordRateLimited counts a request rejected in scope.
func RecordRateLimited(scope string) { RateLimitedTotal.WithLabelValues(scope).Inc() }

// RecordEventPublish counts a publish attempt by result ("ok" or "error").
func RecordEventPublish(result string) { EventsPublishedTotal.WithLabelValues(result).Inc() }
