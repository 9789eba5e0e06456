// Package metrics exposes Prometheus instrumentation for scheduling and
// forecasting. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of the scheduler service.
type Metrics struct {
	ratings          *prometheus.CounterVec
	rateDuration     prometheus.Histogram
	rateFailures     *prometheus.CounterVec
	selections       *prometheus.CounterVec
	forecastDuration prometheus.Histogram
	forecastReviews  prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ratings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scry_scheduler_ratings_total",
			Help: "Ratings applied, by rating and profile",
		}, []string{"rating", "profile"}),

		rateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scry_scheduler_rate_duration_seconds",
			Help:    "Duration of the rate transaction in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}),

		rateFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scry_scheduler_rate_failures_total",
			Help: "Failed rate calls, by reason",
		}, []string{"reason"}),

		selections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scry_scheduler_selections_total",
			Help: "Next-card selections, by kind (review, new, none)",
		}, []string{"kind"}),

		forecastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scry_forecast_duration_seconds",
			Help:    "Forecast simulation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}),

		forecastReviews: factory.NewCounter(prometheus.CounterOpts{
			Name: "scry_forecast_simulated_reviews_total",
			Help: "Synthetic reviews replayed by the forecast simulator",
		}),
	}
}

// RecordRating counts one applied rating.
func (m *Metrics) RecordRating(rating, profile string) {
	if m == nil {
		return
	}
	m.ratings.WithLabelValues(rating, profile).Inc()
}

// ObserveRateDuration records the latency of one rate call.
func (m *Metrics) ObserveRateDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.rateDuration.Observe(d.Seconds())
}

// RecordRateFailure counts a failed rate call.
func (m *Metrics) RecordRateFailure(reason string) {
	if m == nil {
		return
	}
	m.rateFailures.WithLabelValues(reason).Inc()
}

// RecordSelection counts the outcome of a next-card selection.
func (m *Metrics) RecordSelection(kind string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(kind).Inc()
}

// ObserveForecast records one simulator run.
func (m *Metrics) ObserveForecast(d time.Duration, simulatedReviews int) {
	if m == nil {
		return
	}
	m.forecastDuration.Observe(d.Seconds())
	m.forecastReviews.Add(float64(simulatedReviews))
}

// Handler serves the collectors of g in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
