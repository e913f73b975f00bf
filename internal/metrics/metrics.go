// Package metrics exposes Prometheus collectors for the scraper and its API.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes recorded by ObserveAttempt.
const (
	OutcomeOK       = "ok"
	OutcomeBlocked  = "blocked"
	OutcomeError    = "error"
	OutcomeHTTPFail = "http_status"
)

var (
	fetchAttemptsTotal         *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	blocksTotal                *prometheus.CounterVec
	identityRotationsTotal     *prometheus.CounterVec
	lookupsTotal               *prometheus.CounterVec
	fieldsMissingTotal         *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_attempts_total",
				Help: "Page fetch attempts, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 25},
			},
			[]string{"site"},
		)

		blocksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_blocks_total",
				Help: "Responses classified as anti-bot blocks, labeled by site and signal kind.",
			},
			[]string{"site", "kind"},
		)

		identityRotationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_identity_rotations_total",
				Help: "Identity rotations, labeled by the profile rotated to.",
			},
			[]string{"profile"},
		)

		lookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_lookups_total",
				Help: "Product and search lookups, labeled by kind and status.",
			},
			[]string{"kind", "status"},
		)

		fieldsMissingTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fields_missing_total",
				Help: "Product fields that no extraction strategy could fill.",
			},
			[]string{"field"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite reduces a URL to a lowercase hostname for use as a label.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAttempt records one fetch attempt and its latency.
func ObserveAttempt(rawURL, outcome string, duration time.Duration) {
	Init()
	site := SanitizeSite(rawURL)
	fetchAttemptsTotal.WithLabelValues(site, outcome).Inc()
	if duration > 0 {
		fetchDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
	}
}

// ObserveBlock records a block signal; kind is "status" or "marker".
func ObserveBlock(rawURL, kind string) {
	Init()
	blocksTotal.WithLabelValues(SanitizeSite(rawURL), kind).Inc()
}

// ObserveRotation records a switch to the named identity profile.
func ObserveRotation(profile string) {
	Init()
	identityRotationsTotal.WithLabelValues(profile).Inc()
}

// ObserveLookup records a finished product or search lookup.
func ObserveLookup(kind, status string) {
	Init()
	lookupsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveMissingField records a field left absent after extraction.
func ObserveMissingField(field string) {
	Init()
	fieldsMissingTotal.WithLabelValues(field).Inc()
}

// ObserveHTTPRequest increments the API request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
