// Package observability provides Prometheus metrics for request dispatch and
// item store access.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreBuckets covers single-item reads through full-table scans, 1ms to 10s.
var StoreBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10}

// Recorder holds the service's collectors. The zero value is not usable; build
// one with NewRecorder.
type Recorder struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeOps        *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
// It panics if any collector is already registered there.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "product_inventory_requests_total",
				Help: "Dispatched requests by route and status code",
			},
			[]string{"route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "product_inventory_request_duration_seconds",
				Help:    "Request dispatch duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "product_inventory_store_operations_total",
				Help: "Item store primitives by driver, operation and result",
			},
			[]string{"driver", "operation", "result"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "product_inventory_store_operation_duration_seconds",
				Help:    "Item store primitive latency",
				Buckets: StoreBuckets,
			},
			[]string{"driver", "operation"},
		),
	}
	reg.MustRegister(r.requests, r.requestDuration, r.storeOps, r.storeDuration)
	return r
}

// ObserveRequest records one dispatched request.
func (r *Recorder) ObserveRequest(route string, status int, d time.Duration) {
	r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveStore records one item store primitive.
func (r *Recorder) ObserveStore(driver, operation string, success bool, d time.Duration) {
	result := "ok"
	if !success {
		result = "error"
	}
	r.storeOps.WithLabelValues(driver, operation, result).Inc()
	r.storeDuration.WithLabelValues(driver, operation).Observe(d.Seconds())
}
