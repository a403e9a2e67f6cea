package ports

import (
	"context"
	"time"

	"NewsClassifier/internal/domain"
)

// ArticleStore reads pending articles and records classification outcomes.
type ArticleStore interface {
	FetchPending(ctx context.Context, limit int) ([]domain.Article, error)
	PersistResult(ctx context.Context, id int64, update domain.ResultUpdate) error
}

// Classifier opens run-scoped sessions against the model endpoint.
type Classifier interface {
	NewSession() (ClassifierSession, error)
}

// ClassifierSession sends one article at a time to the model.
type ClassifierSession interface {
	Classify(ctx context.Context, title, summary string) (domain.Completion, error)
	Close() error
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Recorder collects per-article and per-run metrics.
type Recorder interface {
	ObserveArticle(status domain.Status, elapsed time.Duration)
	ObserveRun(ctx context.Context, summary domain.RunSummary) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
