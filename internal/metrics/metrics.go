package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinehall_orders_created_total",
		Help: "Total number of orders created",
	})

	ItemsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinehall_order_items_added_total",
		Help: "Total number of items added to orders",
	})

	ItemsVoided = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinehall_order_items_voided_total",
		Help: "Total number of order items voided",
	})

	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dinehall_payments_recorded_total",
		Help: "Total number of payments recorded, by method",
	}, []string{"method"})

	BillsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinehall_bills_settled_total",
		Help: "Total number of bills settled as paid",
	})

	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinehall_order_lock_timeouts_total",
		Help: "Total number of order lock acquisitions that timed out",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dinehall_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
