package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	plansComputed *prometheus.CounterVec
	rejections    *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installment_plan",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		plansComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installment_plan",
			Name:      "plans_computed_total",
			Help:      "Installment plans computed by bank.",
		}, []string{"bank"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installment_plan",
			Name:      "plan_rejections_total",
			Help:      "Plan requests rejected by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(m.requests, m.plansComputed, m.rejections)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument counts requests served by next under the given route label.
func (m *metrics) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
