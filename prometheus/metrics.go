package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"marketplace-service/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Listing metrics
	ListingOperationsCounter prometheus.CounterVec
	ListingInventoryGauge    prometheus.GaugeVec

	// Order metrics
	OrderPlacementsCounter  prometheus.CounterVec
	OrderTransitionsCounter prometheus.CounterVec
	StockRejectionsCounter  prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Listing metrics
	ListingOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_listing_operations_total",
			Help: "Total number of listing operations",
		},
		[]string{"operation"},
	)

	ListingInventoryGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_listing_inventory",
			Help: "Current stock level per listing",
		},
		[]string{"listing_id", "target_tier"},
	)

	// Order metrics
	OrderPlacementsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_placements_total",
			Help: "Total number of order placement attempts",
		},
		[]string{"kind", "outcome"},
	)

	OrderTransitionsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_transitions_total",
			Help: "Total number of order status transitions",
		},
		[]string{"kind", "to_status"},
	)

	StockRejectionsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_stock_rejections_total",
			Help: "Total number of orders rejected for insufficient stock",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordListingOperation increments the counter for listing operations
func RecordListingOperation(operation string) {
	ListingOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordOrderPlacement increments the counter for order placement attempts
func RecordOrderPlacement(kind, outcome string) {
	OrderPlacementsCounter.WithLabelValues(kind, outcome).Inc()
}

// RecordOrderTransition increments the counter for order status transitions
func RecordOrderTransition(kind, toStatus string) {
	OrderTransitionsCounter.WithLabelValues(kind, toStatus).Inc()
}

// UpdateListingInventory updates the gauge for a listing's stock level
func UpdateListingInventory(listingID string, targetTier string, count float64) {
	ListingInventoryGauge.WithLabelValues(listingID, targetTier).Set(count)
}
