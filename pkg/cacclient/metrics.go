package cacclient

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation shared by every client
// instance in the process. Registered once via a package-level singleton,
// the same pattern the teacher uses for its cache metrics.
type Metrics struct {
	SnapshotInstalls *prometheus.CounterVec
	NotModified      *prometheus.CounterVec
	FetchErrors      *prometheus.CounterVec
	DecodeErrors     *prometheus.CounterVec
	RefreshDuration  *prometheus.HistogramVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// GetMetrics returns the process-wide Metrics singleton, registering its
// collectors with the default Prometheus registry on first call.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			SnapshotInstalls: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cac_client_snapshot_installs_total",
					Help: "Number of times a fresh snapshot was installed, by tenant.",
				},
				[]string{"tenant"},
			),
			NotModified: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cac_client_not_modified_total",
					Help: "Number of refreshes that received 304 Not Modified, by tenant.",
				},
				[]string{"tenant"},
			),
			FetchErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cac_client_fetch_errors_total",
					Help: "Number of refreshes that failed with a transport or status error, by tenant.",
				},
				[]string{"tenant"},
			),
			DecodeErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cac_client_decode_errors_total",
					Help: "Number of responses that failed to decode as a Document, by tenant.",
				},
				[]string{"tenant"},
			),
			RefreshDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cac_client_refresh_duration_seconds",
					Help:    "Duration of a refresh tick's HTTP round trip, by tenant.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tenant"},
			),
		}
	})
	return metricsInstance
}
