package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/canonical"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/dedup"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/wordpress"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/planner"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
)

const articlesTxTimeout = 10 * time.Minute

// ArticlesDeps wires the article pipeline's collaborators.
type ArticlesDeps struct {
	Blog        ports.BlogClient
	Store       ports.Store
	PerPage     int
	InsecureTLS bool
	Logger      *slog.Logger
}

// Articles synchronizes WordPress posts into local articles.
type Articles struct {
	blog        ports.BlogClient
	store       ports.Store
	perPage     int
	insecureTLS bool
	logger      *slog.Logger
}

// NewArticles constructs the article pipeline.
func NewArticles(deps ArticlesDeps) *Articles {
	perPage := deps.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	return &Articles{
		blog:        deps.Blog,
		store:       deps.Store,
		perPage:     perPage,
		insecureTLS: deps.InsecureTLS,
		logger:      deps.Logger,
	}
}

// sourceWork is the per-source state of one pass.
type sourceWork struct {
	source domain.Source
	plan   planner.FetchPlan
	total  int
	posts  []wordpress.Post
}

// Run executes one pass over every active source. All writes of the
// pass land in one transaction: the observed totals, the new
// categories and the new articles commit together or not at all.
func (a *Articles) Run(ctx context.Context) error {
	p := newPass("articles", a.logger)

	p.enter(StageFetching)
	sources, err := a.store.ListSources(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("list sources: %w", err))
	}

	err = a.store.InTx(ctx, articlesTxTimeout, func(ctx context.Context, tx ports.TxStore) error {
		work := make([]sourceWork, len(sources))
		opts := wordpress.RequestOptions{InsecureSkipVerify: a.insecureTLS}

		// Probe remote totals concurrently and plan the catch-up.
		group, groupCtx := errgroup.WithContext(ctx)
		for i, source := range sources {
			i, source := i, source
			group.Go(func() error {
				total, err := a.blog.FetchTotal(groupCtx, source.URL, opts)
				if err != nil {
					return fmt.Errorf("source %s: fetch total: %w", source.URL, err)
				}
				work[i] = sourceWork{
					source: source,
					plan:   planner.Plan(source.ArticlesCount, total, a.perPage),
					total:  total,
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}

		// Persist the observed totals before fetching pages, so a crash
		// mid-pass cannot lose them. Transaction writes stay on this
		// goroutine; only network fetches fan out.
		for _, w := range work {
			if w.plan.Empty {
				continue
			}
			if err := tx.UpdateSourceArticlesCount(ctx, w.source.ID, w.total); err != nil {
				return err
			}
		}

		group, groupCtx = errgroup.WithContext(ctx)
		for i := range work {
			w := &work[i]
			if w.plan.Empty {
				continue
			}
			group.Go(func() error {
				page, err := a.blog.FetchPage(groupCtx, w.source.URL, w.plan.Page, a.perPage, opts)
				if err != nil {
					return fmt.Errorf("source %s: fetch page %d: %w", w.source.URL, w.plan.Page, err)
				}
				w.posts = planner.Apply(w.plan, page)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}

		p.enter(StageReconciling)
		categories := dedup.NewCategories()
		var articles []domain.Article
		var refs []*canonical.CategoryRef
		for _, w := range work {
			for _, post := range w.posts {
				article, ref, err := canonical.Article(post, w.source.ID)
				if err != nil {
					return fmt.Errorf("source %s: %w", w.source.URL, err)
				}
				if ref != nil {
					categories.Add(ref.Slug, ref.Name)
				}
				articles = append(articles, article)
				refs = append(refs, ref)
			}
		}

		resolved, err := categories.Resolve(ctx, tx)
		if err != nil {
			return err
		}
		for i, ref := range refs {
			if ref == nil {
				continue
			}
			if id, ok := resolved[ref.Slug]; ok {
				articles[i].CategoryID = &id
			}
		}

		p.enter(StagePersisting)
		return tx.InsertArticles(ctx, articles)
	})
	if err != nil {
		return p.fail(err)
	}

	p.done()
	return nil
}
