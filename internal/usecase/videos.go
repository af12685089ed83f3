package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/canonical"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/youtube"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
)

const videosTxTimeout = 12 * time.Minute

// channelTabs are scraped for every channel each pass.
var channelTabs = []string{youtube.TabVideos, youtube.TabStreams}

// VideosDeps wires the video pipeline's collaborators.
type VideosDeps struct {
	Discovery ports.VideoDiscovery
	Metadata  ports.VideoMetadataClient
	Store     ports.Store
	BatchSize int
	Logger    *slog.Logger
}

// Videos synchronizes channel uploads and streams into local videos.
type Videos struct {
	discovery ports.VideoDiscovery
	metadata  ports.VideoMetadataClient
	store     ports.Store
	batchSize int
	logger    *slog.Logger
}

// NewVideos constructs the video pipeline.
func NewVideos(deps VideosDeps) *Videos {
	batchSize := deps.BatchSize
	if batchSize <= 0 || batchSize > youtube.MaxIDsPerCall {
		batchSize = youtube.MaxIDsPerCall
	}
	return &Videos{
		discovery: deps.Discovery,
		metadata:  deps.Metadata,
		store:     deps.Store,
		batchSize: batchSize,
		logger:    deps.Logger,
	}
}

// Run executes one pass: discover candidate ids from every channel tab,
// resolve them batch-wise to metadata and upsert the finished videos
// inside one transaction. Live and upcoming broadcasts are dropped; a
// later pass picks them up once they finish.
func (v *Videos) Run(ctx context.Context) error {
	p := newPass("videos", v.logger)

	p.enter(StageFetching)
	channels, err := v.store.ListChannels(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("list channels: %w", err))
	}

	// Scrape all channel tabs concurrently, keeping a deterministic
	// channel-then-tab order in the flattened id list.
	slots := make([][]string, len(channels)*len(channelTabs))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, channel := range channels {
		for j, tab := range channelTabs {
			slot := i*len(channelTabs) + j
			channel, tab := channel, tab
			group.Go(func() error {
				ids, err := v.discovery.ChannelVideoIDs(groupCtx, channel.CustomURL, tab)
				if err != nil {
					return fmt.Errorf("channel %s tab %s: %w", channel.CustomURL, tab, err)
				}
				slots[slot] = ids
				return nil
			})
		}
	}
	if err := group.Wait(); err != nil {
		return p.fail(err)
	}

	var videoIDs []string
	for _, ids := range slots {
		videoIDs = append(videoIDs, ids...)
	}

	err = v.store.InTx(ctx, videosTxTimeout, func(ctx context.Context, tx ports.TxStore) error {
		batches := chunk(videoIDs, v.batchSize)

		// Batch metadata lookups fan out; upserts stay on this goroutine.
		fetched := make([][]youtube.Video, len(batches))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, batch := range batches {
			i, batch := i, batch
			group.Go(func() error {
				videos, err := v.metadata.ListVideos(groupCtx, batch)
				if err != nil {
					return fmt.Errorf("batch %d: %w", i, err)
				}
				fetched[i] = videos
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}

		p.enter(StageReconciling)
		var videos []domain.Video
		for i, batch := range fetched {
			for _, raw := range batch {
				video, err := canonical.Video(raw)
				if err != nil {
					return fmt.Errorf("batch %d: %w", i, err)
				}
				if !video.Final() {
					continue
				}
				videos = append(videos, video)
			}
		}

		p.enter(StagePersisting)
		for _, video := range videos {
			if err := tx.UpsertVideo(ctx, video); err != nil {
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

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
