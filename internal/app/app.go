package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/api"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/config"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/instagram"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/scheduler"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/storage"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/telegram"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/wordpress"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/youtube"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/logging"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/usecase"
)

// Application wires config to adapters, pipelines and lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Store
	articles  *usecase.Articles
	videos    *usecase.Videos
	kajian    *usecase.Kajian
	server    *api.Server
	scheduler ports.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	store := storage.New(db)

	var discovery ports.VideoDiscovery
	switch cfg.YouTube.Discovery {
	case "anchors":
		discovery = youtube.NewAnchorScraper(nil, cfg.YouTube.VideosPerTab)
	default:
		discovery = youtube.NewInitialDataScraper(nil, cfg.YouTube.VideosPerTab)
	}

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	articles := usecase.NewArticles(usecase.ArticlesDeps{
		Blog:        wordpress.NewClient(nil),
		Store:       store,
		PerPage:     cfg.WordPress.PerPage,
		InsecureTLS: cfg.WordPress.InsecureTLS,
		Logger:      baseLogger.With("component", "articles"),
	})

	videos := usecase.NewVideos(usecase.VideosDeps{
		Discovery: discovery,
		Metadata:  youtube.NewMetadataClient(cfg.YouTube.APIKey, nil),
		Store:     store,
		BatchSize: cfg.YouTube.BatchSize,
		Logger:    baseLogger.With("component", "videos"),
	})

	kajian := usecase.NewKajian(usecase.KajianDeps{
		Feed:      instagram.NewClient(cfg.Instagram.AppID, cfg.Instagram.Cookie, nil),
		Store:     store,
		Notifier:  notifier,
		FeedCount: cfg.Instagram.FeedCount,
		Logger:    baseLogger.With("component", "kajian-info"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		articles:  articles,
		videos:    videos,
		kajian:    kajian,
		server:    api.NewServer(cfg.Server.Port, articles, videos, kajian, baseLogger.With("component", "api")),
		scheduler: scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
	}, nil
}

// Run serves HTTP triggers and, when a cron expression is configured,
// runs all pipelines on schedule. It blocks until the context is
// canceled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx, func(now time.Time) {
		a.logger.Info("scheduled run starting", "at", now)
		a.runAll(ctx)
	}); err != nil {
		return err
	}

	err := a.server.Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if stopErr := a.scheduler.Stop(stopCtx); stopErr != nil {
		a.logger.Warn("scheduler stop", "error", stopErr)
	}
	if closeErr := a.store.Close(); closeErr != nil {
		a.logger.Warn("store close", "error", closeErr)
	}

	return err
}

// runAll executes the pipelines sequentially. One pipeline failing
// does not keep the others from running.
func (a *Application) runAll(ctx context.Context) {
	type named struct {
		name string
		run  func(context.Context) error
	}
	for _, pipeline := range []named{
		{"articles", a.articles.Run},
		{"videos", a.videos.Run},
		{"kajian-info", a.kajian.Run},
	} {
		if err := pipeline.run(ctx); err != nil {
			a.logger.Error("scheduled pipeline failed", "pipeline", pipeline.name, "error", err)
		}
	}
}
