package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set holds the process metric collectors.
type Set struct {
	registry *prometheus.Registry

	CronRuns     *prometheus.CounterVec
	CronFailures *prometheus.CounterVec
	CronDuration *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
}

// New builds an isolated registry with the standard collectors attached.
func New() *Set {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Set{
		registry: registry,
		CronRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "comanda_cron_runs_total",
			Help: "Completed cron job runs.",
		}, []string{"job"}),
		CronFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "comanda_cron_failures_total",
			Help: "Cron job runs that returned an error.",
		}, []string{"job"}),
		CronDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "comanda_cron_duration_seconds",
			Help:    "Wall-clock duration of cron job runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "comanda_http_requests_total",
			Help: "HTTP requests by route and status class.",
		}, []string{"route", "status"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
