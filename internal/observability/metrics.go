package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "worktracker",
		Subsystem: "persistence",
		Name:      "last_batch_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity batch persisted to Postgres.",
	})
	batchesIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "worktracker",
		Subsystem: "ingest",
		Name:      "batches_total",
		Help:      "Number of daemon batches accepted.",
	})
	batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "worktracker",
		Subsystem: "ingest",
		Name:      "batch_size_samples",
		Help:      "Distribution of samples per accepted batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(batchPersistGauge, batchesIngested, batchSize)
}

// RecordBatchPersisted updates the persistence watermark gauge.
func RecordBatchPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	batchPersistGauge.Set(float64(ts.Unix()))
}

// RecordBatchIngested counts one accepted batch of the given size.
func RecordBatchIngested(samples int) {
	batchesIngested.Inc()
	batchSize.Observe(float64(samples))
}
