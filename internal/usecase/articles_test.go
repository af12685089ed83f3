package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/wordpress"
)

func TestArticlesFullySyncedSourceFetchesNothing(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		sources: []domain.Source{{ID: "source-1", URL: "muslim.or.id", ArticlesCount: 25}},
	}
	blog := &fakeBlog{totals: map[string]int{"muslim.or.id": 25}}

	articles := NewArticles(ArticlesDeps{Blog: blog, Store: store, PerPage: 10})
	require.NoError(t, articles.Run(context.Background()))

	assert.Empty(t, blog.pageCalls)
	assert.Empty(t, store.tx.countUpdates)
	assert.Empty(t, store.tx.insertedArticles)
	assert.Empty(t, store.tx.createdCategories)
}

func TestArticlesSecondRunIsIdempotent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		sources: []domain.Source{{ID: "source-1", URL: "muslim.or.id", ArticlesCount: 23}},
	}
	blog := &fakeBlog{
		totals: map[string]int{"muslim.or.id": 25},
		pages: map[string][]wordpress.Post{
			pageKey("muslim.or.id", 3): {
				wpPost(21, "known one", ""),
				wpPost(22, "known two", ""),
				wpPost(23, "known three", ""),
				wpPost(24, "fresh one", ""),
				wpPost(25, "fresh two", ""),
			},
		},
	}

	articles := NewArticles(ArticlesDeps{Blog: blog, Store: store, PerPage: 10})
	require.NoError(t, articles.Run(context.Background()))

	// Page 3 is the partial page; its three known posts are trimmed.
	assert.Equal(t, []string{pageKey("muslim.or.id", 3)}, blog.pageCalls)
	require.Len(t, store.tx.insertedArticles, 2)
	assert.Equal(t, int64(24), store.tx.insertedArticles[0].OriginArticleID)
	assert.Equal(t, int64(25), store.tx.insertedArticles[1].OriginArticleID)
	assert.Equal(t, 25, store.tx.countUpdates["source-1"])

	// Second run with the local count caught up: nothing fetched or written.
	store2 := &fakeStore{
		sources: []domain.Source{{ID: "source-1", URL: "muslim.or.id", ArticlesCount: 25}},
	}
	secondRun := NewArticles(ArticlesDeps{Blog: blog, Store: store2, PerPage: 10})
	pageCallsBefore := len(blog.pageCalls)
	require.NoError(t, secondRun.Run(context.Background()))

	assert.Len(t, blog.pageCalls, pageCallsBefore)
	assert.Empty(t, store2.tx.insertedArticles)
	assert.Empty(t, store2.tx.createdCategories)
}

func TestArticlesCategoryDedupAcrossRecords(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		sources: []domain.Source{{ID: "source-1", URL: "muslim.or.id", ArticlesCount: 0}},
	}
	store.tx.existingCategories = []domain.ArticleCategory{{ID: "C1", Slug: "news", Name: "news"}}

	blog := &fakeBlog{
		totals: map[string]int{"muslim.or.id": 4},
		pages: map[string][]wordpress.Post{
			pageKey("muslim.or.id", 1): {
				wpPost(1, "a", "news"),
				wpPost(2, "b", "sports"),
				wpPost(3, "c", "news"),
				wpPost(4, "d", "sports"),
			},
		},
	}

	articles := NewArticles(ArticlesDeps{Blog: blog, Store: store, PerPage: 10})
	require.NoError(t, articles.Run(context.Background()))

	// Existing slug reuses C1; the new slug gets exactly one row.
	require.Len(t, store.tx.createdCategories, 1)
	assert.Equal(t, "sports", store.tx.createdCategories[0].Slug)
	sportsID := store.tx.createdCategories[0].ID

	require.Len(t, store.tx.insertedArticles, 4)
	for _, article := range store.tx.insertedArticles {
		require.NotNil(t, article.CategoryID)
		switch article.OriginArticleID {
		case 1, 3:
			assert.Equal(t, "C1", *article.CategoryID)
		case 2, 4:
			assert.Equal(t, sportsID, *article.CategoryID)
		}
	}
}

func TestArticlesFetchErrorFailsPass(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		sources: []domain.Source{{ID: "source-1", URL: "unknown.example", ArticlesCount: 0}},
	}
	blog := &fakeBlog{totals: map[string]int{}}

	articles := NewArticles(ArticlesDeps{Blog: blog, Store: store, PerPage: 10})
	require.Error(t, articles.Run(context.Background()))
	assert.False(t, store.committed)
	assert.Empty(t, store.tx.insertedArticles)
}
