package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insightflow_engine_builds_total",
		Help: "Engine builds by outcome.",
	}, []string{"outcome"})

	engineBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "insightflow_engine_build_seconds",
		Help:    "Time spent building relation graphs for new engines.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	liveEngines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "insightflow_live_engines",
		Help: "Engines currently held in memory.",
	})

	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insightflow_requests_total",
		Help: "Analysis requests by operation and outcome.",
	}, []string{"op", "outcome"})

	insightsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "insightflow_insights_returned",
		Help:    "Insights returned per explain request.",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
