// Package metrics holds the Prometheus collectors for the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stages.
const (
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageClassify   = "classify"
	StageRecommend  = "recommend"
)

// Analysis outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// Registry is the registry served at /metrics.
	Registry = prometheus.NewRegistry()

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resonance",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resonance",
			Name:      "analyses_total",
			Help:      "Completed analyses by outcome.",
		},
		[]string{"outcome"},
	)

	MoodCategories = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resonance",
			Name:      "mood_category_total",
			Help:      "Mood categories produced by the mapper.",
		},
		[]string{"category"},
	)
)

func init() {
	Registry.MustRegister(
		StageDuration,
		Analyses,
		MoodCategories,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveStage records how long a stage took.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Timer starts timing a stage. Call the returned func when the stage ends.
func Timer(stage string) func() {
	start := time.Now()
	return func() { ObserveStage(stage, time.Since(start)) }
}

// CountAnalysis increments the outcome counter.
func CountAnalysis(outcome string) {
	Analyses.WithLabelValues(outcome).Inc()
}

// CountCategory increments the mood category counter.
func CountCategory(category string) {
	MoodCategories.WithLabelValues(category).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
