package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Time spent composing a tracking report from scratch
	ReportGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skintrack_report_generation_seconds",
		Help:    "Latency of tracking report generation",
		Buckets: prometheus.DefBuckets,
	})

	// Report cache lookups by result (hit, miss, error)
	ReportCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skintrack_report_cache_lookups_total",
		Help: "Tracking report cache lookups",
	}, []string{"result"})

	CheckInsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skintrack_check_ins_recorded_total",
		Help: "Total number of check-ins recorded",
	})

	ReliabilityScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skintrack_check_in_reliability_score",
		Help:    "Distribution of check-in reliability scores",
		Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	AnomaliesDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skintrack_anomalies_detected_total",
		Help: "Anomalies flagged in generated reports",
	}, []string{"metric", "severity"})

	PredictiveAlerts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skintrack_predictive_alerts_total",
		Help: "Risk alerts raised by trend forecasts",
	}, []string{"metric", "severity"})
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ReportGenerationDuration,
			ReportCacheLookups,
			CheckInsRecorded,
			ReliabilityScores,
			AnomaliesDetected,
			PredictiveAlerts,
		)
	})
}
