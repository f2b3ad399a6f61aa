package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gsReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenshield_reports_total",
		Help: "Total reports processed by outcome.",
	}, []string{"outcome"})

	gsProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "greenshield_processing_duration_seconds",
		Help:    "End-to-end report processing duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	gsAnomaliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenshield_anomalies_total",
		Help: "Total anomalies flagged across processed reports.",
	})

	gsSatelliteFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenshield_satellite_fetches_total",
		Help: "Total reference imagery acquisitions by source.",
	}, []string{"source"})

	gsConfidenceLevels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenshield_confidence_levels_total",
		Help: "Total decisions by confidence level.",
	}, []string{"level"})
)
