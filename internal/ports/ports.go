package ports

import (
	"context"
	"time"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/instagram"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/wordpress"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/youtube"
)

// BlogClient reads paginated posts from a WordPress site.
type BlogClient interface {
	// FetchTotal probes the listing endpoint and returns the remote
	// post count reported by the X-WP-Total header.
	FetchTotal(ctx context.Context, baseURL string, opts wordpress.RequestOptions) (int, error)
	// FetchPage returns one page of posts ordered ascending by id, with
	// featured media and taxonomy terms embedded.
	FetchPage(ctx context.Context, baseURL string, page, perPage int, opts wordpress.RequestOptions) ([]wordpress.Post, error)
}

// VideoMetadataClient batch-resolves video ids to full metadata.
type VideoMetadataClient interface {
	ListVideos(ctx context.Context, ids []string) ([]youtube.Video, error)
}

// VideoDiscovery yields the remote video ids listed on one channel tab,
// ordered as rendered and capped by the implementation.
type VideoDiscovery interface {
	ChannelVideoIDs(ctx context.Context, customURL, tab string) ([]string, error)
}

// SocialFeedClient reads an Instagram account's recent feed.
type SocialFeedClient interface {
	FetchFeed(ctx context.Context, username string, count int) ([]instagram.Post, error)
}

// Notifier is the fire-and-forget sink for unresolved map references.
type Notifier interface {
	NotifyUnresolvedLocation(ctx context.Context, mapURL, postCode string) error
}

// TxStore exposes the mutations available inside one pass transaction.
type TxStore interface {
	UpdateSourceArticlesCount(ctx context.Context, sourceID string, total int) error
	CategoriesBySlugs(ctx context.Context, slugs []string) ([]domain.ArticleCategory, error)
	CreateCategory(ctx context.Context, category domain.ArticleCategory) error
	InsertArticles(ctx context.Context, articles []domain.Article) error
	UpsertVideo(ctx context.Context, video domain.Video) error
	UpsertKajianInfo(ctx context.Context, info domain.KajianInfo) error
}

// Store is the persisted side of the system. InTx runs fn inside a
// single transaction with a hard wall-clock budget; any error (or the
// deadline) rolls every write of the pass back.
type Store interface {
	ListSources(ctx context.Context) ([]domain.Source, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	ListInstagramAccounts(ctx context.Context) ([]domain.InstagramAccount, error)
	FindLocationByMapID(ctx context.Context, mapID string) (*domain.KajianLocation, error)
	InTx(ctx context.Context, timeout time.Duration, fn func(context.Context, TxStore) error) error
}

// Scheduler controls when the pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
