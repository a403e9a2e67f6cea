package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsClassifier/internal/config"
	"NewsClassifier/internal/domain"
)

func TestRecorderObserveArticle(t *testing.T) {
	t.Parallel()

	r := NewRecorder(config.MetricsConfig{})
	r.ObserveArticle(domain.StatusClassified, time.Second)
	r.ObserveArticle(domain.StatusClassified, 2*time.Second)
	r.ObserveArticle(domain.StatusFailedNoReply, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.articles.WithLabelValues(string(domain.StatusClassified))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.articles.WithLabelValues(string(domain.StatusFailedNoReply))))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))

	require.NoError(t, r.ObserveRun(context.Background(), domain.RunSummary{Total: 3}))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.lastSize))
	assert.Greater(t, testutil.ToFloat64(r.lastRun), 0.0)
}

func TestRecorderPushesToGateway(t *testing.T) {
	t.Parallel()

	var pushes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/metrics/job/nightly" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		pushes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := NewRecorder(config.MetricsConfig{PushgatewayURL: server.URL, Job: "nightly"})
	r.ObserveArticle(domain.StatusClassified, time.Second)

	require.NoError(t, r.ObserveRun(context.Background(), domain.RunSummary{Total: 1, Successful: 1}))
	assert.Equal(t, int32(1), pushes.Load())
}

func TestRecorderPushFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewRecorder(config.MetricsConfig{PushgatewayURL: server.URL})
	assert.Error(t, r.ObserveRun(context.Background(), domain.RunSummary{}))
}

func TestRecorderRegistryExposesMetrics(t *testing.T) {
	t.Parallel()

	r := NewRecorder(config.MetricsConfig{})
	r.ObserveArticle(domain.StatusFailedUnparsed, time.Second)
	require.NoError(t, r.ObserveRun(context.Background(), domain.RunSummary{Total: 1, Failed: 1}))

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.ElementsMatch(t, []string{
		"news_classifier_articles_total",
		"news_classifier_classify_duration_seconds",
		"news_classifier_last_run_timestamp_seconds",
		"news_classifier_last_run_articles",
	}, names)
}
