package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsClassifier/internal/domain"
	"NewsClassifier/internal/parser"
	"NewsClassifier/internal/ports"
)

const titlePreviewRunes = 30

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Store      ports.ArticleStore
	Classifier ports.Classifier
	Notifier   ports.Notifier
	Recorder   ports.Recorder
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline classifies pending articles one at a time.
type Pipeline struct {
	store      ports.ArticleStore
	classifier ports.Classifier
	notifier   ports.Notifier
	recorder   ports.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		store:      deps.Store,
		classifier: deps.Classifier,
		notifier:   deps.Notifier,
		recorder:   deps.Recorder,
		logger:     logger,
		now:        now,
	}
}

// Run fetches up to limit pending articles (all when limit <= 0) and classifies them in order.
// Per-article failures are recorded in the store and counted; only a failed fetch, a session
// that cannot be opened, or a cancelled context end the run with an error.
func (p *Pipeline) Run(ctx context.Context, limit int) (domain.RunSummary, error) {
	var summary domain.RunSummary
	if p.store == nil || p.classifier == nil {
		return summary, fmt.Errorf("pipeline is not configured")
	}

	articles, err := p.store.FetchPending(ctx, limit)
	if err != nil {
		return summary, fmt.Errorf("fetch pending: %w", err)
	}

	if len(articles) == 0 {
		p.logger.Info("no pending articles")
		return summary, nil
	}
	p.logger.Info("fetched pending articles", "count", len(articles))

	session, err := p.classifier.NewSession()
	if err != nil {
		return summary, fmt.Errorf("open classifier session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			p.logger.Warn("close classifier session", "error", closeErr)
		}
	}()

	summary.Total = len(articles)
	for i, article := range articles {
		if ctxErr := ctx.Err(); ctxErr != nil {
			p.logger.Warn("run interrupted", "processed", i, "total", len(articles))
			return summary, ctxErr
		}

		p.logger.Info("processing article",
			"index", i+1,
			"total", len(articles),
			"id", article.ID,
			"title", preview(article.Title),
		)

		started := p.now()
		status, classification := p.classifyOne(ctx, session, article)
		if p.recorder != nil {
			p.recorder.ObserveArticle(status, p.now().Sub(started))
		}

		if status != domain.StatusClassified {
			summary.Failed++
			continue
		}
		summary.Successful++
		if classification == domain.LabelThreat {
			summary.Threats = append(summary.Threats, article)
		}
	}

	p.logger.Info("processing complete",
		"successful", summary.Successful,
		"failed", summary.Failed,
	)
	p.report(ctx, summary)

	return summary, nil
}

// classifyOne runs the call-parse-persist sequence for one article. It returns the status the
// article now has in the store (PENDING when the write failed) and the parsed classification.
func (p *Pipeline) classifyOne(ctx context.Context, session ports.ClassifierSession, article domain.Article) (domain.Status, string) {
	log := p.logger.With("id", article.ID)

	completion, err := session.Classify(ctx, article.Title, article.Summary)
	if err != nil {
		log.Error("failed to get model response", "error", err)
		return p.fail(ctx, log, article.ID, domain.StatusFailedNoReply), ""
	}

	if completion.Truncated() {
		log.Warn("response was cut off due to token limit")
	}

	classification, explanation := parser.Parse(completion.Content)
	if classification == "" || explanation == "" {
		log.Error("failed to parse model response")
		return p.fail(ctx, log, article.ID, domain.StatusFailedUnparsed), ""
	}

	update := domain.ClassifiedUpdate(classification, explanation, completion.Reasoning)
	if !p.persist(ctx, log, article.ID, update) {
		return domain.StatusPending, classification
	}

	log.Info("article classified", "classification", classification)
	return domain.StatusClassified, classification
}

func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, id int64, status domain.Status) domain.Status {
	if !p.persist(ctx, log, id, domain.FailedUpdate(status)) {
		return domain.StatusPending
	}
	return status
}

func (p *Pipeline) persist(ctx context.Context, log *slog.Logger, id int64, update domain.ResultUpdate) bool {
	if err := p.store.PersistResult(ctx, id, update); err != nil {
		log.Error("failed to update article", "status", string(update.Status), "error", err)
		return false
	}
	return true
}

func (p *Pipeline) report(ctx context.Context, summary domain.RunSummary) {
	if p.recorder != nil {
		if err := p.recorder.ObserveRun(ctx, summary); err != nil {
			p.logger.Warn("record run metrics", "error", err)
		}
	}

	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(summary)); err != nil {
		p.logger.Warn("publish run digest", "error", err)
	}
}

func buildDigestMessage(summary domain.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classification run complete\nSuccessful: %d\nFailed: %d\n", summary.Successful, summary.Failed)

	if len(summary.Threats) == 0 {
		return b.String()
	}

	b.WriteString("\nThreats:\n")
	for _, article := range summary.Threats {
		fmt.Fprintf(&b, "- %s\n%s\n", article.Title, article.Link)
	}
	return b.String()
}

func preview(title string) string {
	runes := []rune(title)
	if len(runes) <= titlePreviewRunes {
		return title
	}
	return string(runes[:titlePreviewRunes]) + "..."
}
