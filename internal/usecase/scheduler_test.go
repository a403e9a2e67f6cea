package usecase

import (
	"context"
	"testing"
	"time"
)

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (f *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	f.job = job
	return nil
}

func (f *fakeDriver) Stop(context.Context) error {
	f.stopped = true
	return nil
}

func TestSchedulerRunsPipelineWithLimit(t *testing.T) {
	t.Parallel()

	store := &fakeStore{articles: articles("one")}
	classifier := &fakeClassifier{replies: map[string]reply{
		"one": answer("Classification: Neutral\nExplanation: Fine."),
	}}
	driver := &fakeDriver{}

	s := NewScheduler(driver, NewPipeline(PipelineDeps{Store: store, Classifier: classifier}), 7, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if driver.job == nil {
		t.Fatalf("job was not registered")
	}

	driver.job(time.Now())
	if store.fetchLimit != 7 || len(store.writes) != 1 {
		t.Fatalf("scheduled job did not run the pipeline: limit=%d writes=%d", store.fetchLimit, len(store.writes))
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop did not reach the driver: %v", err)
	}
}
