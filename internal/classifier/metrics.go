package classifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
)

const (
	branchIdle    = "idle"
	branchRule    = "rule"
	branchAI      = "ai"
	branchDefault = "default"
)

var (
	classifiedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worktracker",
		Subsystem: "classifier",
		Name:      "samples_classified_total",
		Help:      "Number of samples classified, labeled by category and deciding branch.",
	}, []string{"category", "branch"})

	labelFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "worktracker",
		Subsystem: "classifier",
		Name:      "ai_label_failures_total",
		Help:      "Number of AI labeling calls that degraded to Private.",
	})

	labelDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "worktracker",
		Subsystem: "classifier",
		Name:      "ai_label_duration_seconds",
		Help:      "Latency of outbound AI labeling calls.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(classifiedCounter, labelFailureCounter, labelDuration)
}

func recordClassified(category domain.Category, branch string) {
	classifiedCounter.WithLabelValues(string(category), branch).Inc()
}

func recordLabelFailure() {
	labelFailureCounter.Inc()
}

func observeLabelDuration(d time.Duration) {
	labelDuration.Observe(d.Seconds())
}
