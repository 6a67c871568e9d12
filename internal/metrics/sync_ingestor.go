package metrics

import (
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncFetchEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auctionsight",
		Subsystem: "sync_ingestor",
		Name:      "fetch_events_total",
		Help:      "Count of attempts to fetch contract event ranges.",
	}, []string{"network", "status"})

	syncFetchEventsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auctionsight",
		Subsystem: "sync_ingestor",
		Name:      "fetch_events_duration_seconds",
		Help:      "Duration of fetching contract event ranges.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	syncProcessBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auctionsight",
		Subsystem: "sync_ingestor",
		Name:      "process_batch_total",
		Help:      "Count of event batches processed.",
	}, []string{"network", "status"})

	syncProcessBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auctionsight",
		Subsystem: "sync_ingestor",
		Name:      "process_batch_duration_seconds",
		Help:      "Duration of processing an event batch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	syncProcessBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auctionsight",
		Subsystem: "sync_ingestor",
		Name:      "process_batch_size",
		Help:      "Number of events processed per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"network"})
)

// SyncIngester tracks metrics for the event synchronizer pipeline.
type SyncIngester struct {
	network model.Network
}

// NewSyncIngester constructs a SyncIngester with defaults.
func NewSyncIngester(network model.Network) *SyncIngester {
	if network == "" {
		network = "unknown"
	}
	return &SyncIngester{network: network}
}

// ObserveFetchEvents records a fetch attempt outcome and duration.
func (m SyncIngester) ObserveFetchEvents(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	syncFetchEventsTotal.WithLabelValues(string(m.network), status).Inc()
	syncFetchEventsDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
}

// ObserveProcessBatch records processing of an event batch.
func (m SyncIngester) ObserveProcessBatch(err error, events int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	syncProcessBatchTotal.WithLabelValues(string(m.network), status).Inc()
	syncProcessBatchDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	syncProcessBatchSize.WithLabelValues(string(m.network)).
		Observe(float64(events))
}
