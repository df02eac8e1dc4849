// Package metrics exposes Prometheus collectors for browserd.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	browserLaunchesTotal       *prometheus.CounterVec
	browserLaunchSeconds       prometheus.Histogram
	browserRunning             prometheus.Gauge
	captureTotal               *prometheus.CounterVec
	captureSeconds             *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		browserLaunchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browserd_browser_launches_total",
				Help: "Total number of browser launches, labeled by result.",
			},
			[]string{"result"},
		)

		browserLaunchSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "browserd_browser_launch_seconds",
				Help:    "Time from spawn until the debug endpoint answered.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20},
			},
		)

		browserRunning = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "browserd_browser_running",
				Help: "1 while a managed browser is running.",
			},
		)

		captureTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browserd_captures_total",
				Help: "Total number of screenshot captures, labeled by mode and result.",
			},
			[]string{"mode", "result"},
		)

		captureSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "browserd_capture_seconds",
				Help:    "Histogram of screenshot capture latencies, labeled by mode.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"mode"},
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
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func captureMode(fullPage bool) string {
	if fullPage {
		return "full_page"
	}
	return "viewport"
}

// ObserveLaunch records one launch attempt.
func ObserveLaunch(err error, duration time.Duration) {
	Init()
	browserLaunchesTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		browserLaunchSeconds.Observe(duration.Seconds())
		browserRunning.Set(1)
	}
}

// ObserveStopped records that the managed browser is gone.
func ObserveStopped() {
	Init()
	browserRunning.Set(0)
}

// ObserveCapture records one screenshot capture.
func ObserveCapture(fullPage bool, err error, duration time.Duration) {
	Init()
	mode := captureMode(fullPage)
	captureTotal.WithLabelValues(mode, result(err)).Inc()
	if err == nil {
		captureSeconds.WithLabelValues(mode).Observe(duration.Seconds())
	}
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latencies by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		ObserveHTTPRequest(r.Method, route, code, time.Since(start))
	})
}
