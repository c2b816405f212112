package metrics

import (
	"strconv"
	"time"

	"learning-buddy/internal/domain/transition"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_buddy_predictions_total",
			Help: "Next-skill predictions by outcome",
		},
		[]string{"outcome"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "learning_buddy_prediction_duration_seconds",
			Help:    "Time spent running one next-skill prediction",
			Buckets: prometheus.DefBuckets,
		},
	)

	PredictionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "learning_buddy_prediction_cache_hits_total",
			Help: "Next-skill predictions served from cache",
		},
	)

	PredictionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "learning_buddy_prediction_cache_misses_total",
			Help: "Next-skill predictions computed on cache miss",
		},
	)

	RoadmapComposeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_buddy_roadmap_compose_total",
			Help: "Roadmap compositions by lookup kind and result",
		},
		[]string{"lookup", "found"},
	)

	ModuleUnlocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "learning_buddy_module_unlock_notifications_total",
			Help: "Module unlock notifications published",
		},
	)

	ClassifierAccuracy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learning_buddy_classifier_accuracy",
			Help: "Transition classifier accuracy from the last training run",
		},
		[]string{"split"},
	)

	ClassifierTrainingPairs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learning_buddy_classifier_training_pairs",
			Help: "Transition classifier pairs by label",
		},
		[]string{"label"},
	)

	ProviderBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learning_buddy_provider_build_duration_seconds",
			Help:    "Time spent building the predictor or compositor",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "success"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learning_buddy_websocket_clients",
			Help: "Connected roadmap websocket clients",
		},
	)
)

func RecordPrediction(outcome string, d time.Duration) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
	PredictionDuration.Observe(d.Seconds())
}

func RecordCompose(lookup string, found bool) {
	RoadmapComposeTotal.WithLabelValues(lookup, strconv.FormatBool(found)).Inc()
}

func RecordProviderBuild(provider string, d time.Duration, err error) {
	ProviderBuildDuration.WithLabelValues(provider, strconv.FormatBool(err == nil)).Observe(d.Seconds())
}

func RecordTraining(r transition.Report) {
	ClassifierAccuracy.WithLabelValues("train").Set(r.TrainAccuracy)
	ClassifierAccuracy.WithLabelValues("test").Set(r.TestAccuracy)
	ClassifierTrainingPairs.WithLabelValues("positive").Set(float64(r.Positives))
	ClassifierTrainingPairs.WithLabelValues("negative").Set(float64(r.Negatives))
}
