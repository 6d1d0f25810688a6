package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalRequestsTotal *prometheus.CounterVec
	retrievalDuration      *prometheus.HistogramVec
	retrievalCandidates    *prometheus.HistogramVec
	retrievalResults       *prometheus.HistogramVec
	retrievalNoHitsTotal   *prometheus.CounterVec
	expansionFallbackTotal *prometheus.CounterVec
	rerankFallbackTotal    *prometheus.CounterVec
	lexicalRebuildsTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalmind",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalmind",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legalmind",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalmind",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total completed retrieval requests by status.",
		},
		[]string{"service", "status"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalmind",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	retrievalCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalmind",
			Subsystem: "retrieval",
			Name:      "candidates",
			Help:      "Distribution of merged candidates per retrieval request.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80, 160},
		},
		[]string{"service"},
	)
	retrievalResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalmind",
			Subsystem: "retrieval",
			Name:      "results",
			Help:      "Distribution of final results per retrieval request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	retrievalNoHitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalmind",
			Subsystem: "retrieval",
			Name:      "no_hits_total",
			Help:      "Total retrieval requests that returned no results.",
		},
		[]string{"service"},
	)
	expansionFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalmind",
			Subsystem: "retrieval",
			Name:      "expansion_fallback_total",
			Help:      "Total query expansions that fell back to the original query.",
		},
		[]string{"service", "stage"},
	)
	rerankFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalmind",
			Subsystem: "retrieval",
			Name:      "rerank_fallback_total",
			Help:      "Total rerank calls that preserved the fused ordering.",
		},
		[]string{"service"},
	)
	lexicalRebuildsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalmind",
			Subsystem: "index",
			Name:      "lexical_rebuilds_total",
			Help:      "Total lazy rebuilds of the in-memory lexical index.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalRequestsTotal,
		retrievalDuration,
		retrievalCandidates,
		retrievalResults,
		retrievalNoHitsTotal,
		expansionFallbackTotal,
		rerankFallbackTotal,
		lexicalRebuildsTotal,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		retrievalRequestsTotal: retrievalRequestsTotal,
		retrievalDuration:      retrievalDuration,
		retrievalCandidates:    retrievalCandidates,
		retrievalResults:       retrievalResults,
		retrievalNoHitsTotal:   retrievalNoHitsTotal,
		expansionFallbackTotal: expansionFallbackTotal,
		rerankFallbackTotal:    rerankFallbackTotal,
		lexicalRebuildsTotal:   lexicalRebuildsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRetrieval(service, status string, candidates, results int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.retrievalRequestsTotal.WithLabelValues(service, status).Inc()
	m.retrievalDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.retrievalCandidates.WithLabelValues(service).Observe(float64(candidates))
	m.retrievalResults.WithLabelValues(service).Observe(float64(results))
	if results == 0 {
		m.retrievalNoHitsTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordExpansionFallback(service, stage string) {
	if stage == "" {
		stage = "unknown"
	}
	m.expansionFallbackTotal.WithLabelValues(service, stage).Inc()
}

func (m *HTTPServerMetrics) RecordRerankFallback(service string) {
	m.rerankFallbackTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordLexicalRebuild(service string) {
	m.lexicalRebuildsTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
