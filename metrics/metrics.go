// Package metrics exposes the engine's counters to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StoreCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nutscan_store_calls_total",
		Help: "Store round trips by command",
	}, []string{"command"})

	StoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nutscan_store_errors_total",
		Help: "Failed store round trips by command",
	}, []string{"command"})

	Batches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nutscan_batches_total",
		Help: "Batches handed to callers by key type (\"keys\" for keyspace batches)",
	}, []string{"type"})

	BatchItems = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nutscan_batch_items",
		Help:    "Items per batch handed to callers",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"type"})

	StaleKeys = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nutscan_stale_keys_total",
		Help: "Scanned keys dropped because they vanished or have an unsupported type",
	})

	ScanStalls = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nutscan_scan_stalls_total",
		Help: "Keyspace scans abandoned after too many empty batches",
	})
)

func init() {
	prometheus.MustRegister(StoreCalls)
	prometheus.MustRegister(StoreErrors)
	prometheus.MustRegister(Batches)
	prometheus.MustRegister(BatchItems)
	prometheus.MustRegister(StaleKeys)
	prometheus.MustRegister(ScanStalls)
}

func ObserveStoreCall(command string, err error) {
	StoreCalls.WithLabelValues(command).Inc()
	if err != nil {
		StoreErrors.WithLabelValues(command).Inc()
	}
}

func ObserveBatch(kind string, items int) {
	Batches.WithLabelValues(kind).Inc()
	BatchItems.WithLabelValues(kind).Observe(float64(items))
}

func IncStaleKeys(n int) {
	if n > 0 {
		StaleKeys.Add(float64(n))
	}
}

func IncScanStalls() {
	ScanStalls.Inc()
}
