package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/cache"
	"ai-promoter/infrastructure/clients/gemini"
	"ai-promoter/infrastructure/clients/linkedin"
	"ai-promoter/infrastructure/clients/slack"
	"ai-promoter/infrastructure/configuration"
	"ai-promoter/infrastructure/feeds"
	"ai-promoter/infrastructure/logger"
	"ai-promoter/infrastructure/persistence"
	"ai-promoter/infrastructure/pubsub"
	"ai-promoter/infrastructure/realtime"
	"ai-promoter/infrastructure/scraper"
	"ai-promoter/infrastructure/servicebus"
	httpHandler "ai-promoter/interfaces/http"
	"ai-promoter/server"
	"ai-promoter/usecase"

	"golang.org/x/sync/errgroup"
)

const feedPollLock = "feed_poll"

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	cfg, err := configuration.Load()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Configuration failed")
	}

	if err := run(ctx, cfg); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func run(ctx context.Context, cfg *configuration.Config) error {
	lg := logger.GetLogger()

	db, err := persistence.NewPostgreSQLDB(cfg.Database.Psql)
	if err != nil {
		return fmt.Errorf("connecting postgres: %w", err)
	}
	defer db.Close()
	if err := persistence.EnsurePromoterSchema(db); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	gormDB, err := persistence.NewGormDB(db)
	if err != nil {
		return fmt.Errorf("opening gorm: %w", err)
	}

	mongoClient, err := persistence.NewMongoDb(cfg.Database.Mongo)
	if err != nil {
		lg.WithField("error", err).Warn("MongoDB not available - extraction archive disabled")
		mongoClient = nil
	}
	redisClient, err := cache.NewCache(cfg.RedisClient)
	if err != nil {
		lg.WithField("error", err).Warn("Redis not available - poll lock and digest marker are process local")
		redisClient = nil
	}
	pubSubClient, err := pubsub.NewClient(ctx, cfg.Pubsub.ProjectID)
	if err != nil {
		lg.WithField("error", err).Warn("PubSub not available - events stay in process")
		pubSubClient = nil
	}

	userRepository := persistence.NewUserRepository(db)
	contentRepository := persistence.NewContentRepository(db)
	credentialRepository := persistence.NewCredentialRepository(db)
	shareRepository := persistence.NewShareRepository(gormDB)
	archive := persistence.NewExtractionArchive(mongoClient, cfg.Database.Mongo.Database, cfg.Database.Mongo.Collection)

	jobs, err := scrapeQueue(cfg, persistence.NewScrapeJobRepository(db))
	if err != nil {
		return err
	}

	feedSource, err := feeds.NewSource(cfg.Feeds.Timeout(), cfg.Feeds.ValidatorCacheSize, cfg.Scrape.UserAgent)
	if err != nil {
		return fmt.Errorf("creating feed source: %w", err)
	}
	fetcher := scraper.NewFetcher(cfg.Scrape.Timeout(), cfg.Scrape.RequestsPerSecond, cfg.Scrape.UserAgent)
	extractor, err := gemini.NewExtractor(ctx, cfg.Gemini)
	if err != nil {
		return err
	}
	if cfg.Gemini.APIKey == "" {
		lg.Warn("GEMINI_API_KEY not set; extraction will fail and scrapes will retry")
	}
	notifier := slack.NewNotifier(cfg.Slack)
	platformHTTP := &http.Client{Timeout: 30 * time.Second}
	oauthClient := linkedin.NewOAuthClient(cfg.LinkedIn, platformHTTP)
	poster := linkedin.NewPoster(cfg.LinkedIn.APIBaseURL, platformHTTP)

	hub := realtime.NewHub()
	events := usecase.NewEventSink(pubsub.NewEventPublisher(pubSubClient, cfg.Pubsub.Topic), hub)

	tokens := usecase.NewTokenManager(credentialRepository, oauthClient, userRepository, notifier, usecase.TokenManagerConfig{
		RefreshSkew: cfg.LinkedIn.RefreshSkew(),
		SweepWindow: cfg.LinkedIn.SweepWindow(),
		BaseURL:     cfg.App.BaseURL,
	})
	poller := usecase.NewFeedPoller(cfg.Feeds.URLs, feedSource, contentRepository, jobs, events)
	worker := usecase.NewScrapeWorker(usecase.ScrapeWorkerDeps{
		Content:   contentRepository,
		Jobs:      jobs,
		Fetcher:   fetcher,
		Extractor: extractor,
		Archive:   archive,
		Notifier:  notifier,
		Events:    events,
	}, usecase.RetryPolicy{MaxAttempts: cfg.Scrape.MaxAttempts, BaseDelay: cfg.Scrape.BaseDelay()})
	publisher := usecase.NewPublisher(usecase.PublisherDeps{
		Tokens:   tokens,
		Poster:   poster,
		Content:  contentRepository,
		Shares:   shareRepository,
		Users:    userRepository,
		Notifier: notifier,
		Events:   events,
	}, cfg.App.BaseURL)
	digest := usecase.NewDigest(contentRepository, notifier, cache.NewDigestMarker(redisClient), usecase.DigestConfig{
		Enabled:   notifier.Enabled(),
		Channel:   cfg.Slack.DefaultChannelID,
		ChunkSize: cfg.Digest.ChunkSize,
		BaseURL:   cfg.App.BaseURL,
	})
	lock := cache.NewLock(redisClient)

	router := server.InitiateRouter(cfg.App, userRepository, server.Handlers{
		User:     httpHandler.NewUserHandler(usecase.NewUserUsecase(userRepository, cfg.App.SecretKey)),
		Content:  httpHandler.NewContentHandler(usecase.NewContentUsecase(contentRepository, jobs, shareRepository, userRepository, events, cfg.Campaign.UTMParams), cfg.Campaign.UTMParams),
		Publish:  httpHandler.NewPublishHandler(publisher),
		LinkedIn: httpHandler.NewLinkedInOAuthHandler(tokens, cfg.App.BaseURL),
		Jobs:     httpHandler.NewJobsHandler(poller, worker, jobs, cfg.Scrape.BatchSize, cfg.Scrape.Concurrency),
		Stream:   hub.Serve,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return every(ctx, "feed_poll", cfg.Feeds.PollInterval(), func(ctx context.Context) error {
			ran, err := usecase.RunLocked(ctx, lock, feedPollLock, cfg.Feeds.PollInterval(), func(ctx context.Context) error {
				_, err := poller.Poll(ctx)
				return err
			})
			if !ran && err == nil {
				lg.Debug("Feed poll skipped, another replica holds the lock")
			}
			return err
		})
	})
	g.Go(func() error {
		return every(ctx, "scrape_jobs", cfg.Scrape.PollEvery(), func(ctx context.Context) error {
			_, err := usecase.RunScrapeJobs(ctx, worker, jobs, cfg.Scrape.BatchSize, cfg.Scrape.Concurrency)
			return err
		})
	})
	g.Go(func() error {
		return every(ctx, "token_sweep", cfg.LinkedIn.SweepInterval(), func(ctx context.Context) error {
			_, err := tokens.RefreshExpiring(ctx)
			return err
		})
	})
	g.Go(func() error {
		return every(ctx, "digest", cfg.Digest.Interval(), func(ctx context.Context) error {
			_, err := digest.Run(ctx)
			return err
		})
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		lg.WithFields(map[string]interface{}{"port": cfg.App.Port, "tls": cfg.App.TLSEnabled}).Info("Starting application")
		var err error
		if cfg.App.TLSEnabled && cfg.App.TLSCertFile != "" && cfg.App.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.App.TLSCertFile, cfg.App.TLSKeyFile)
		} else {
			if cfg.App.TLSEnabled {
				lg.Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		lg.Info("Application shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if mongoClient != nil {
			_ = mongoClient.Disconnect(shutdownCtx)
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if pubSubClient != nil {
			_ = pubSubClient.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func scrapeQueue(cfg *configuration.Config, store repository.IScrapeJob) (repository.IScrapeJob, error) {
	if cfg.Scrape.Queue != "servicebus" {
		return store, nil
	}
	client, err := servicebus.NewClient(cfg.ServiceBus.Namespace)
	if err != nil {
		return nil, fmt.Errorf("creating service bus client: %w", err)
	}
	return servicebus.NewScrapeQueue(client, cfg.ServiceBus.Queue, store)
}

// every runs fn immediately and then on each tick until ctx ends. Errors are logged, never fatal.
func every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		start := time.Now()
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.GetLogger().WithField("job", name).WithField("error", err).Error("Scheduled job failed")
		} else {
			logger.GetLogger().WithField("job", name).WithField("took", time.Since(start).String()).Debug("Scheduled job finished")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
