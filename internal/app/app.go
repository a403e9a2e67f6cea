package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"NewsClassifier/internal/config"
	"NewsClassifier/internal/domain"
	"NewsClassifier/internal/infrastructure/llm"
	"NewsClassifier/internal/infrastructure/metrics"
	"NewsClassifier/internal/infrastructure/scheduler"
	"NewsClassifier/internal/infrastructure/storage"
	"NewsClassifier/internal/infrastructure/telegram"
	"NewsClassifier/internal/logging"
	"NewsClassifier/internal/ports"
	"NewsClassifier/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	pipeline *usecase.Pipeline
}

// New validates the configuration and connects the store. Configuration and connection
// errors are returned before any article is touched.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, driver, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect article store: %w", err)
	}
	baseLogger.Debug("article store connected", "driver", driver, "table", cfg.Database.Table)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Store:      storage.NewSQLStore(db, driver, cfg.Database.Table),
		Classifier: llm.NewClient(cfg.Chutes),
		Notifier:   notifier,
		Recorder:   metrics.NewRecorder(cfg.Metrics),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, db: db, pipeline: pipeline}, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context, limit int) (domain.RunSummary, error) {
	return a.pipeline.Run(ctx, limit)
}

// Watch runs the pipeline on the configured interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, limit int) error {
	interval := a.cfg.Scheduler.Interval
	if interval <= 0 {
		return fmt.Errorf("watch mode needs a positive scheduler interval")
	}

	sched := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(interval),
		a.pipeline,
		limit,
		a.logger.With("component", "scheduler"),
	)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching for pending articles", "interval", interval)

	<-ctx.Done()
	return sched.Stop(context.WithoutCancel(ctx))
}

// Close releases the store connection.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
