// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicer_http_requests_total",
			Help: "HTTP requests by method, route template and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoicer_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route template.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicer_rpc_requests_total",
			Help: "Connect RPC calls by procedure and result code.",
		},
		[]string{"procedure", "code"},
	)

	InvoicesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoicer_invoices_saved_total",
		Help: "Invoice records written to the store.",
	})

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicer_exports_total",
			Help: "Export documents by kind (invoice_csv, summary_csv, summary_json, pdf) and result.",
		},
		[]string{"kind", "result"},
	)

	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicer_emails_total",
			Help: "Invoice emails by result (ok or the failure kind).",
		},
		[]string{"result"},
	)
)

// Result returns "ok" for a nil error and "error" otherwise.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
