package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/canonical"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/instagram"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
)

const kajianTxTimeout = 12 * time.Minute

// KajianDeps wires the kajian pipeline's collaborators.
type KajianDeps struct {
	Feed      ports.SocialFeedClient
	Store     ports.Store
	Notifier  ports.Notifier
	FeedCount int
	Logger    *slog.Logger
}

// Kajian synchronizes Instagram kajian announcements, correlating the
// map link in each caption against the geocoded location table.
type Kajian struct {
	feed      ports.SocialFeedClient
	store     ports.Store
	notifier  ports.Notifier
	feedCount int
	logger    *slog.Logger
}

// NewKajian constructs the kajian pipeline.
func NewKajian(deps KajianDeps) *Kajian {
	feedCount := deps.FeedCount
	if feedCount <= 0 {
		feedCount = 60
	}
	return &Kajian{
		feed:      deps.Feed,
		store:     deps.Store,
		notifier:  deps.Notifier,
		feedCount: feedCount,
		logger:    deps.Logger,
	}
}

type accountFeed struct {
	account domain.InstagramAccount
	items   []instagram.Post
}

// Run executes one pass over every active account. A map link that
// cannot be resolved is a soft warning: the record is persisted with
// null location fields and the reference is reported to the notifier,
// whose delivery failures never fail the pass.
func (k *Kajian) Run(ctx context.Context) error {
	p := newPass("kajian-info", k.logger)

	p.enter(StageFetching)
	accounts, err := k.store.ListInstagramAccounts(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("list instagram accounts: %w", err))
	}

	feeds := make([]accountFeed, len(accounts))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, account := range accounts {
		i, account := i, account
		group.Go(func() error {
			items, err := k.feed.FetchFeed(groupCtx, account.Username, k.feedCount)
			if err != nil {
				return fmt.Errorf("account %s: %w", account.Username, err)
			}
			feeds[i] = accountFeed{account: account, items: items}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return p.fail(err)
	}

	p.enter(StageReconciling)
	var infos []domain.KajianInfo
	for _, feed := range feeds {
		for _, post := range feed.items {
			location, err := k.resolveLocation(ctx, post)
			if err != nil {
				return p.fail(err)
			}
			infos = append(infos, canonical.Kajian(post, feed.account.ID, feed.account.CityID, location)...)
		}
	}

	p.enter(StagePersisting)
	err = k.store.InTx(ctx, kajianTxTimeout, func(ctx context.Context, tx ports.TxStore) error {
		for _, info := range infos {
			if err := tx.UpsertKajianInfo(ctx, info); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return p.fail(err)
	}

	p.done()
	return nil
}

// resolveLocation maps the caption's shared map link to a known
// location. Unknown map ids downgrade to a warning notification.
func (k *Kajian) resolveLocation(ctx context.Context, post instagram.Post) (*domain.KajianLocation, error) {
	mapURL := canonical.MapURL(post)
	mapID := canonical.MapID(mapURL)
	if mapID == "" {
		return nil, nil
	}

	location, err := k.store.FindLocationByMapID(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("resolve map id %s: %w", mapID, err)
	}
	if location != nil {
		return location, nil
	}

	if k.notifier != nil {
		if err := k.notifier.NotifyUnresolvedLocation(ctx, mapURL, post.Code); err != nil && k.logger != nil {
			k.logger.Warn("unresolved location notification failed",
				"map_url", mapURL, "post", post.Code, "error", err)
		}
	}

	return nil, nil
}
