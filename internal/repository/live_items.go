package repository

import (
	"context"
	"strings"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/jmoiron/sqlx"
)

type LiveItemRepository interface {
	Upsert(ctx context.Context, items []models.LiveDataItem, ingestedAt time.Time) (int, error)
	Search(ctx context.Context, keyword string, limit int) ([]models.LiveDataItem, error)
	Count(ctx context.Context) (int, error)
	CountPublishedSince(ctx context.Context, since time.Time) (int, error)
}

type liveItemRepository struct {
	db *sqlx.DB
}

func NewLiveItemRepository(db *sqlx.DB) LiveItemRepository {
	return &liveItemRepository{db: db}
}

type liveItemRow struct {
	models.LiveDataItem
	PublishedUnix int64 `db:"published_unix"`
	IngestedUnix  int64 `db:"ingested_unix"`
}

// Upsert inserts items keyed by source_id, replacing earlier versions.
func (r *liveItemRepository) Upsert(ctx context.Context, items []models.LiveDataItem, ingestedAt time.Time) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO live_items (source_id, title, context, author, published_at, published_unix, source_type, url, ingested_unix)
		VALUES (:source_id, :title, :context, :author, :published_at, :published_unix, :source_type, :url, :ingested_unix)
		ON CONFLICT (source_id) DO UPDATE SET
			title = excluded.title,
			context = excluded.context,
			author = excluded.author,
			published_at = excluded.published_at,
			published_unix = excluded.published_unix,
			source_type = excluded.source_type,
			url = excluded.url,
			ingested_unix = excluded.ingested_unix
	`

	n := 0
	for _, item := range items {
		if strings.TrimSpace(item.SourceID) == "" {
			continue
		}
		row := liveItemRow{LiveDataItem: item, IngestedUnix: ingestedAt.Unix()}
		if t, ok := item.PublishedTime(); ok {
			row.PublishedUnix = t.Unix()
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return 0, err
		}
		n++
	}

	return n, tx.Commit()
}

// Search returns items whose title, context or author contain keyword,
// newest first.
func (r *liveItemRepository) Search(ctx context.Context, keyword string, limit int) ([]models.LiveDataItem, error) {
	items := []models.LiveDataItem{}

	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	query := `
		SELECT source_id, title, context, author, published_at, source_type, url
		FROM live_items
		WHERE lower(title) LIKE ? ESCAPE '\'
		   OR lower(context) LIKE ? ESCAPE '\'
		   OR lower(author) LIKE ? ESCAPE '\'
		ORDER BY published_unix DESC, source_id
		LIMIT ?
	`

	if err := r.db.SelectContext(ctx, &items, query, pattern, pattern, pattern, limit); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *liveItemRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM live_items`)
	return n, err
}

func (r *liveItemRepository) CountPublishedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM live_items WHERE published_unix >= ?`, since.Unix())
	return n, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
