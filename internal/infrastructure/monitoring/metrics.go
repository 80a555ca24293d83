package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	PaymentsProcessedTotal   *prometheus.CounterVec
	AccumulationRunsTotal    prometheus.Counter
	AccumulationChargedTotal prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wifi_billing_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		PaymentsProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wifi_billing_payments_processed_total",
				Help: "Total number of processed payments by outcome.",
			},
			[]string{"status"},
		),
		AccumulationRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wifi_billing_debt_accumulation_runs_total",
				Help: "Total number of debt accumulation batch runs.",
			},
		),
		AccumulationChargedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wifi_billing_debt_accumulation_charged_total",
				Help: "Total number of customers charged with debt by the accumulation job.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordPayment(status string) {
	Business.PaymentsProcessedTotal.WithLabelValues(status).Inc()
}

func RecordAccumulationRun(charged int) {
	Business.AccumulationRunsTotal.Inc()
	Business.AccumulationChargedTotal.Add(float64(charged))
}
