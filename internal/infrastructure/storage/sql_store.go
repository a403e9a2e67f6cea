package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsClassifier/internal/domain"
	"NewsClassifier/internal/ports"
)

var articleColumns = []string{
	"id", "status", "title", "link", "summary", "date_published", "source", "added_at",
}

// timestamp layouts seen in the articles table: native timestamps, RSS pubDate strings and
// SQLite CURRENT_TIMESTAMP defaults.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SQLStore reads and updates the articles table on Postgres or SQLite.
type SQLStore struct {
	db      *sql.DB
	table   string
	builder sq.StatementBuilderType
}

var _ ports.ArticleStore = (*SQLStore)(nil)

// NewSQLStore wires a sql.DB; placeholders follow the given driver.
func NewSQLStore(db *sql.DB, driver, table string) *SQLStore {
	if table == "" {
		table = "articles"
	}
	var format sq.PlaceholderFormat = sq.Dollar
	if driver == driverSQLite {
		format = sq.Question
	}
	return &SQLStore{
		db:      db,
		table:   table,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// FetchPending returns PENDING articles, oldest publication first. limit <= 0 means no cap.
func (s *SQLStore) FetchPending(ctx context.Context, limit int) ([]domain.Article, error) {
	if s.db == nil {
		return nil, fmt.Errorf("article store is not configured")
	}

	q := s.builder.
		Select(articleColumns...).
		From(s.table).
		Where(sq.Eq{"status": string(domain.StatusPending)}).
		OrderBy("date_published ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}

	var articles []domain.Article
	for rows.Next() {
		article, scanErr := scanArticle(rows)
		if scanErr != nil {
			_ = rows.Close()
			return nil, scanErr
		}
		articles = append(articles, article)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return articles, nil
}

// PersistResult writes the outcome for one article. Only PENDING rows are updated, so a
// terminal status is never overwritten; otherwise domain.ErrNotPending is returned.
func (s *SQLStore) PersistResult(ctx context.Context, id int64, update domain.ResultUpdate) error {
	if s.db == nil {
		return fmt.Errorf("article store is not configured")
	}
	if !update.Status.Terminal() {
		return fmt.Errorf("persist article %d: status %q is not terminal", id, update.Status)
	}

	query, args, err := s.builder.
		Update(s.table).
		Set("classification", nullable(update.Classification)).
		Set("explanation", nullable(update.Explanation)).
		Set("reasoning", nullable(update.Reasoning)).
		Set("status", string(update.Status)).
		Where(sq.Eq{"id": id, "status": string(domain.StatusPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for article %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update article %d: %w", id, domain.ErrNotPending)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article       domain.Article
		status        string
		summary       sql.NullString
		datePublished sql.NullString
		source        sql.NullString
		addedAt       sql.NullString
	)

	err := row.Scan(
		&article.ID,
		&status,
		&article.Title,
		&article.Link,
		&summary,
		&datePublished,
		&source,
		&addedAt,
	)
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}

	article.Status = domain.Status(status)
	article.Summary = summary.String
	article.Source = source.String
	article.DatePublished = parseTime(datePublished)
	article.AddedAt = parseTime(addedAt)

	return article, nil
}

func parseTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	raw := strings.TrimSpace(value.String)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func nullable(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
