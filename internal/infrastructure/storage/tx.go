package storage

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
)

// txStore implements ports.TxStore on one open transaction.
type txStore struct {
	tx *sqlx.Tx
}

var _ ports.TxStore = (*txStore)(nil)

// UpdateSourceArticlesCount persists the just-observed remote total so
// a crash mid-pass does not lose the discovered count.
func (t *txStore) UpdateSourceArticlesCount(ctx context.Context, sourceID string, total int) error {
	query, args, err := psql.
		Update("sources").
		Set("article_sources_count", total).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": sourceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build source update: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update source %s count: %w", sourceID, err)
	}

	return nil
}

// CategoriesBySlugs bulk-loads existing categories by natural key.
func (t *txStore) CategoriesBySlugs(ctx context.Context, slugs []string) ([]domain.ArticleCategory, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	query, args, err := psql.
		Select("id", "slug", "name").
		From("article_categories").
		Where("slug = ANY(?)", pq.Array(slugs)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories query: %w", err)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.ArticleCategory
	for rows.Next() {
		var category domain.ArticleCategory
		if err := rows.Scan(&category.ID, &category.Slug, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// CreateCategory inserts one newly discovered category.
func (t *txStore) CreateCategory(ctx context.Context, category domain.ArticleCategory) error {
	query, args, err := psql.
		Insert("article_categories").
		Columns("id", "slug", "name").
		Values(category.ID, category.Slug, category.Name).
		ToSql()
	if err != nil {
		return fmt.Errorf("build category insert: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert category %s: %w", category.Slug, wrapConflict(err))
	}

	return nil
}

// InsertArticles bulk-inserts new articles in one statement.
func (t *txStore) InsertArticles(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	builder := psql.
		Insert("articles").
		Columns("id", "title", "image", "origin_article_id", "article_category_id",
			"tags", "source_url", "date", "modified", "source_id")
	for _, article := range articles {
		builder = builder.Values(
			article.ID,
			article.Title,
			article.Image,
			article.OriginArticleID,
			article.CategoryID,
			pq.Array(article.Tags),
			article.SourceURL,
			article.Date,
			article.Modified,
			article.SourceID,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build articles insert: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %d articles: %w", len(articles), wrapConflict(err))
	}

	return nil
}

// UpsertVideo creates or refreshes a video keyed on its remote id, so
// re-running a pass with known ids updates metadata in place.
func (t *txStore) UpsertVideo(ctx context.Context, video domain.Video) error {
	query, args, err := psql.
		Insert("videos").
		Columns("id", "title", "description", "thumbnail", "channel_id",
			"live_broadcast_content", "duration", "published_at").
		Values(video.ID, video.Title, video.Description, video.Thumbnail, video.ChannelID,
			video.LiveBroadcastContent, video.Duration, video.PublishedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title,
			    description = EXCLUDED.description,
			    thumbnail = EXCLUDED.thumbnail,
			    channel_id = EXCLUDED.channel_id,
			    live_broadcast_content = EXCLUDED.live_broadcast_content,
			    duration = EXCLUDED.duration,
			    published_at = EXCLUDED.published_at,
			    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build video upsert: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert video %s: %w", video.ID, err)
	}

	return nil
}

// UpsertKajianInfo inserts a record if its id is unseen and leaves
// existing rows untouched, mirroring the insert-only upsert the feed
// pipeline relies on for idempotency.
func (t *txStore) UpsertKajianInfo(ctx context.Context, info domain.KajianInfo) error {
	query, args, err := psql.
		Insert("kajian_infos").
		Columns("id", "image", "instagram_account_id", "kajian_location_id", "city_id", "lat", "lng").
		Values(info.ID, info.Image, info.InstagramAccountID, info.KajianLocationID, info.CityID, info.Lat, info.Lng).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build kajian insert: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert kajian info %s: %w", info.ID, err)
	}

	return nil
}
