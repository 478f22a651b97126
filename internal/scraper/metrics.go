package scraper

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltrack",
			Subsystem: "scraper",
			Name:      "runs_total",
			Help:      "Total number of completed discovery runs",
		},
		[]string{"result"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modeltrack",
			Subsystem: "scraper",
			Name:      "run_duration_seconds",
			Help:      "Duration of discovery runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	discoveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltrack",
			Subsystem: "scraper",
			Name:      "models_discovered_total",
			Help:      "Raw candidates returned by source connectors",
		},
		[]string{"source"},
	)

	upsertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltrack",
			Subsystem: "scraper",
			Name:      "upserts_total",
			Help:      "Model rows written, split by insert vs update",
		},
		[]string{"source", "op"},
	)

	runSourceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltrack",
			Subsystem: "scraper",
			Name:      "source_failures_total",
			Help:      "Discovery runs in which a source failed entirely",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, runDuration, discoveredTotal, upsertsTotal, runSourceFailures)
}
