package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	SourceAPI    = "api"
	SourceImport = "import"
)

type Metrics struct {
	// Values accepted, by computed status and by path (api or import).
	ValuesSubmitted *prometheus.CounterVec

	// Import jobs by final outcome.
	ImportJobs *prometheus.CounterVec

	ImportRows prometheus.Counter

	// Reporting cache lookups: hit, miss, error.
	ReportCache *prometheus.CounterVec

	HTTPDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Without a registerer the collectors go to a private registry nobody scrapes.
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		ValuesSubmitted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kpix_kpi_values_submitted_total",
			Help: "KPI values stored, by status and source.",
		}, []string{"status", "source"}),

		ImportJobs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kpix_import_jobs_total",
			Help: "Import jobs by outcome.",
		}, []string{"outcome"}),

		ImportRows: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kpix_import_rows_ingested_total",
			Help: "Rows committed by successful imports.",
		}),

		ReportCache: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kpix_report_cache_requests_total",
			Help: "Reporting cache traffic by result (hit, miss, error, stale).",
		}, []string{"report", "result"}),

		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kpix_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status"}),
	}
}
