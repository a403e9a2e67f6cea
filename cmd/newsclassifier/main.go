package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"NewsClassifier/internal/app"
	"NewsClassifier/internal/config"
	"NewsClassifier/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		limit      int
		watch      bool
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "newsclassifier",
		Short: "Classify pending news articles as Threat, Opportunity or Neutral",
		Long: `newsclassifier reads articles with status PENDING from the article store, asks the
configured chat-completion model to classify each one and writes the result back.

Examples:
  # Classify every pending article once
  newsclassifier

  # Classify at most 20 articles, oldest first
  newsclassifier --limit 20

  # Keep running, checking for new articles every 15 minutes
  newsclassifier --watch --interval 15m`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg := config.Load(configPath)
			if cmd.Flags().Changed("limit") {
				cfg.Pipeline.Limit = limit
			}
			watching := resolveWatch(&cfg, watch, cmd.Flags().Changed("watch"), cmd.Flags().Changed("interval"), interval)

			logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}
			defer application.Close()

			if watching {
				return application.Watch(ctx, cfg.Pipeline.Limit)
			}

			summary, err := application.RunOnce(ctx, cfg.Pipeline.Limit)
			if err != nil {
				logger.Error("run failed", "error", err)
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== Processing complete ===")
			fmt.Fprintf(out, "Successful: %d\n", summary.Successful)
			fmt.Fprintf(out, "Failed: %d\n", summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults to $NEWS_CLASSIFIER_CONFIG)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of pending articles per run (0 = all)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and classify on every interval")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Minute, "interval between runs; setting it enables watch mode")

	return cmd
}

// resolveWatch applies the interval flag to cfg and reports whether the command keeps watching.
// An explicit --watch wins; otherwise a positive interval from flags or config enables it.
func resolveWatch(cfg *config.Config, watch, watchSet, intervalSet bool, interval time.Duration) bool {
	if intervalSet || (watch && cfg.Scheduler.Interval <= 0) {
		cfg.Scheduler.Interval = interval
	}
	if watchSet {
		return watch
	}
	return cfg.Scheduler.Interval > 0
}
