// Package metrics holds the Prometheus collectors for the catalog and the
// HTTP instrumentation that feeds them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Book creation sources.
const (
	SourceForm = "form"
	SourceAPI  = "api"
	SourceSeed = "seed"
)

// Recommendation outcomes.
const (
	ResultMatch   = "match"
	ResultNoMatch = "no_match"
	ResultEmpty   = "empty_query"
)

var (
	// Catalog metrics
	BooksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_books_created_total",
			Help: "Total number of books stored, by source",
		},
		[]string{"source"}, // "form", "api", "seed"
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_recommendations_total",
			Help: "Total number of recommendation requests, by outcome",
		},
		[]string{"result"},
	)

	RecommendationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookshelf_recommendation_score",
			Help:    "Score of the winning book for matched recommendations",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		},
	)

	// Storage metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_db_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_db_operation_errors_total",
			Help: "Total number of failed storage operations",
		},
		[]string{"operation"},
	)

	// API metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// RecordBooksCreated counts n stored books from source.
func RecordBooksCreated(source string, n int) {
	if n > 0 {
		BooksCreated.WithLabelValues(source).Add(float64(n))
	}
}

// RecordRecommendation records the outcome of one recommendation request.
func RecordRecommendation(result string, score int) {
	Recommendations.WithLabelValues(result).Inc()
	if result == ResultMatch {
		RecommendationScore.Observe(float64(score))
	}
}

// RecordDBOperation records a storage operation and whether it failed.
func RecordDBOperation(operation string, duration time.Duration, err error) {
	DBOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency labeled by the chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordAPIRequest(r.Method, routePattern(r), status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
