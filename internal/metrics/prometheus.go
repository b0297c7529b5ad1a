package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_prediction_duration_seconds",
			Help:    "Prediction request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"endpoint"},
	)

	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_predictions_total",
			Help: "Total prediction requests by outcome",
		},
		[]string{"status"},
	)

	RiskLevelTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_risk_level_total",
			Help: "Served predictions by triage risk level",
		},
		[]string{"level"},
	)

	ProgressionScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_progression_score",
			Help:    "Raw progression scores served",
			Buckets: []float64{25, 50, 100, 150, 200, 250, 300, 350},
		},
	)

	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_batch_size",
			Help:    "Number of patients per batch request",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "triage_model_loaded",
			Help: "Whether a real model artifact is loaded (1) or not (0)",
		},
	)
)

func Init() {
	prometheus.MustRegister(PredictionDuration)
	prometheus.MustRegister(PredictionsTotal)
	prometheus.MustRegister(RiskLevelTotal)
	prometheus.MustRegister(ProgressionScore)
	prometheus.MustRegister(BatchSize)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ModelLoaded)
}

func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
	} else {
		ModelLoaded.Set(0)
	}
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
