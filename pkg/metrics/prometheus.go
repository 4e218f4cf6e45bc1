package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DownloadsTotal      *prometheus.CounterVec
	ParsesTotal         *prometheus.CounterVec
	FallbackDocuments   prometheus.Counter
	PersistFailures     prometheus.Counter
	AcquisitionDuration prometheus.Histogram
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DownloadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "The total number of invoice download attempts by outcome",
		}, []string{"outcome"}),
		ParsesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "The total number of invoice parse attempts by outcome",
		}, []string{"outcome"}),
		FallbackDocuments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_documents_total",
			Help:      "The total number of placeholder documents produced after portal faults",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "The total number of failed passenger snapshot writes",
		}),
		AcquisitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "acquisition_duration_seconds",
			Help:      "Time taken to run one portal acquisition",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
