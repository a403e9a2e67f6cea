// Package metrics records classification outcomes with Prometheus and optionally pushes them
// to a Pushgateway after each run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"NewsClassifier/internal/config"
	"NewsClassifier/internal/domain"
	"NewsClassifier/internal/ports"
)

const namespace = "news_classifier"

// Recorder implements ports.Recorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	articles *prometheus.CounterVec
	duration prometheus.Histogram
	lastRun  prometheus.Gauge
	lastSize prometheus.Gauge
	pusher   *push.Pusher
}

var _ ports.Recorder = (*Recorder)(nil)

// NewRecorder registers the classifier metrics. Pushing is enabled when a gateway URL is set.
func NewRecorder(cfg config.MetricsConfig) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_total",
			Help:      "Articles processed, by resulting store status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classify_duration_seconds",
			Help:      "Time spent classifying and persisting one article.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
		lastSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_articles",
			Help:      "Number of articles fetched by the last completed run.",
		}),
	}
	r.registry.MustRegister(r.articles, r.duration, r.lastRun, r.lastSize)

	if cfg.PushgatewayURL != "" {
		job := cfg.Job
		if job == "" {
			job = namespace
		}
		r.pusher = push.New(cfg.PushgatewayURL, job).Gatherer(r.registry)
	}

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveArticle counts one processed article.
func (r *Recorder) ObserveArticle(status domain.Status, elapsed time.Duration) {
	r.articles.WithLabelValues(string(status)).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ObserveRun stamps the run and pushes the registry when a gateway is configured.
func (r *Recorder) ObserveRun(ctx context.Context, summary domain.RunSummary) error {
	r.lastRun.SetToCurrentTime()
	r.lastSize.Set(float64(summary.Total))

	if r.pusher == nil {
		return nil
	}
	if err := r.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
