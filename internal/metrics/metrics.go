package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "floral_essence"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// DocumentWrites counts whole-document replacements by outcome (ok, conflict, invalid, error).
	DocumentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_writes_total",
		Help:      "Persistence store write attempts",
	}, []string{"result"})

	DocumentCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_cache_total",
		Help:      "Document cache lookups",
	}, []string{"result"})

	UploadedBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_size_bytes",
		Help:      "Size of stored uploads",
		Buckets:   []float64{10_000, 100_000, 500_000, 1_000_000, 2_500_000, 5_000_000},
	})

	UploadOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_operations_total",
		Help:      "Upload store operations",
	}, []string{"op", "result"})
)
