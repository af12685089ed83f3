package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/instagram"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/wordpress"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/youtube"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
)

type fakeTx struct {
	mu                 sync.Mutex
	countUpdates       map[string]int
	existingCategories []domain.ArticleCategory
	createdCategories  []domain.ArticleCategory
	insertedArticles   []domain.Article
	upsertedVideos     []domain.Video
	upsertedKajian     []domain.KajianInfo
}

func (t *fakeTx) UpdateSourceArticlesCount(_ context.Context, sourceID string, total int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.countUpdates == nil {
		t.countUpdates = map[string]int{}
	}
	t.countUpdates[sourceID] = total
	return nil
}

func (t *fakeTx) CategoriesBySlugs(_ context.Context, slugs []string) ([]domain.ArticleCategory, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var matched []domain.ArticleCategory
	for _, category := range t.existingCategories {
		for _, slug := range slugs {
			if category.Slug == slug {
				matched = append(matched, category)
			}
		}
	}
	return matched, nil
}

func (t *fakeTx) CreateCategory(_ context.Context, category domain.ArticleCategory) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.createdCategories = append(t.createdCategories, category)
	return nil
}

func (t *fakeTx) InsertArticles(_ context.Context, articles []domain.Article) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.insertedArticles = append(t.insertedArticles, articles...)
	return nil
}

func (t *fakeTx) UpsertVideo(_ context.Context, video domain.Video) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.upsertedVideos = append(t.upsertedVideos, video)
	return nil
}

func (t *fakeTx) UpsertKajianInfo(_ context.Context, info domain.KajianInfo) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.upsertedKajian = append(t.upsertedKajian, info)
	return nil
}

type fakeStore struct {
	sources   []domain.Source
	channels  []domain.Channel
	accounts  []domain.InstagramAccount
	locations map[string]*domain.KajianLocation

	tx        fakeTx
	committed bool
}

var _ ports.Store = (*fakeStore)(nil)

func (s *fakeStore) ListSources(context.Context) ([]domain.Source, error) { return s.sources, nil }

func (s *fakeStore) ListChannels(context.Context) ([]domain.Channel, error) { return s.channels, nil }

func (s *fakeStore) ListInstagramAccounts(context.Context) ([]domain.InstagramAccount, error) {
	return s.accounts, nil
}

func (s *fakeStore) FindLocationByMapID(_ context.Context, mapID string) (*domain.KajianLocation, error) {
	return s.locations[mapID], nil
}

func (s *fakeStore) InTx(ctx context.Context, _ time.Duration, fn func(context.Context, ports.TxStore) error) error {
	if err := fn(ctx, &s.tx); err != nil {
		return err
	}
	s.committed = true
	return nil
}

type fakeBlog struct {
	mu         sync.Mutex
	totals     map[string]int
	pages      map[string][]wordpress.Post
	pageCalls  []string
	totalCalls int
}

func pageKey(baseURL string, page int) string {
	return fmt.Sprintf("%s#%d", baseURL, page)
}

func (b *fakeBlog) FetchTotal(_ context.Context, baseURL string, _ wordpress.RequestOptions) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalCalls++
	total, ok := b.totals[baseURL]
	if !ok {
		return 0, fmt.Errorf("unknown source %s", baseURL)
	}
	return total, nil
}

func (b *fakeBlog) FetchPage(_ context.Context, baseURL string, page, _ int, _ wordpress.RequestOptions) ([]wordpress.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := pageKey(baseURL, page)
	b.pageCalls = append(b.pageCalls, key)
	posts, ok := b.pages[key]
	if !ok {
		return nil, fmt.Errorf("unexpected page request %s", key)
	}
	return posts, nil
}

type fakeDiscovery struct {
	ids map[string][]string
}

func (d *fakeDiscovery) ChannelVideoIDs(_ context.Context, customURL, tab string) ([]string, error) {
	return d.ids[customURL+"/"+tab], nil
}

type fakeMetadata struct {
	mu      sync.Mutex
	videos  map[string]youtube.Video
	batches [][]string
}

func (m *fakeMetadata) ListVideos(_ context.Context, ids []string) ([]youtube.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, ids)
	var videos []youtube.Video
	for _, id := range ids {
		if video, ok := m.videos[id]; ok {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

type fakeFeed struct {
	items map[string][]instagram.Post
}

func (f *fakeFeed) FetchFeed(_ context.Context, username string, _ int) ([]instagram.Post, error) {
	return f.items[username], nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *fakeNotifier) NotifyUnresolvedLocation(_ context.Context, mapURL, postCode string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, mapURL+"|"+postCode)
	return n.err
}

func wpPost(id int64, title, categorySlug string) wordpress.Post {
	post := wordpress.Post{
		ID:       id,
		Date:     "2023-01-05T10:00:00",
		Modified: "2023-01-06T11:00:00",
		Link:     fmt.Sprintf("https://example.org/post-%d", id),
		Title:    wordpress.Rendered{Rendered: title},
	}
	if categorySlug != "" {
		post.Embedded = &wordpress.Embedded{
			Terms: [][]wordpress.Term{{{
				ID:       1,
				Name:     categorySlug,
				Slug:     categorySlug,
				Taxonomy: wordpress.TaxonomyCategory,
			}}},
		}
	}
	return post
}

func ytVideo(id, broadcast string) youtube.Video {
	return youtube.Video{
		ID:                   id,
		Title:                "video " + id,
		Description:          "desc",
		Thumbnail:            "https://i.ytimg.com/vi/" + id + "/mq.jpg",
		ChannelID:            "chan-1",
		LiveBroadcastContent: broadcast,
		Duration:             "PT10M",
		PublishedAt:          "2023-02-01T05:00:00Z",
	}
}

func igPost(code, caption string) instagram.Post {
	post := instagram.Post{
		Code: code,
		ImageVersions: &instagram.ImageVersions{
			Candidates: []instagram.ImageCandidate{{URL: "https://cdn/" + code + ".jpg", Width: 1080}},
		},
	}
	if caption != "" {
		post.Caption = &instagram.Caption{Text: caption}
	}
	return post
}
